package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionSubscriptionStarted = "subscription_started"
	ActionSubscriptionStopped = "subscription_stopped"
	ActionSubscriptionFailed  = "subscription_failed"

	ActionReminderDispatch = "reminder_dispatch"
)
