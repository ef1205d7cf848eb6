package docs

// @title           Fleet Operations API
// @version         1.0
// @description     Fleet operations service: trip scheduling and lifecycle, vehicle and driver management, live company statistics over websocket, and vehicle document expiry reminders.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
