package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
fleet-ops — fleet operations service

Usage:
  fleetops [flags]

Flags:
  -config-path string   Path to the config yaml file (default "config.yaml")
  -help                 Show this message

Every config value can also be set through environment variables, see
config.yaml for the full list.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the effective configuration with secrets masked.
func PrintConfig(cfg *Config) {
	fmt.Println("Configuration:")
	fmt.Printf("  server:    %s:%s\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  database:  %s:%s/%s (pool %d..%d)\n",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database,
		cfg.Database.MinConns, cfg.Database.MaxConns)
	fmt.Printf("  rabbitmq:  %s:%s\n", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Printf("  reminders: dispatch every %s\n", cfg.Reminder.DispatchInterval)
	fmt.Printf("  log level: %s\n", cfg.LogLevel)
}
