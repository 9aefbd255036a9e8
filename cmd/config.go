package cmd

import (
	"fmt"

	"fulfillment/internal/core/application/usecases/commands"
)

// Config carries the process-level settings: HTTP listener, database
// connection, and the pipeline timing profile.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	Pipeline commands.Config
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
