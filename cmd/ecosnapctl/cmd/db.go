package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecosnap/ecosnap/internal/config"
	"github.com/ecosnap/ecosnap/internal/db"
)

// openDB connects with the same settings as the server.
func openDB() (*sqlx.DB, string, error) {
	driver, connection := config.LoadDatabase()
	conn, err := db.Init(driver, connection)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	return conn, driver, nil
}
