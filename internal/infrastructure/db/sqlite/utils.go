package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// OpenDb opens (and creates if needed) the sqlite database at dbPath.
// Connections are capped at one: modernc sqlite serializes writers anyway
// and a single connection avoids SQLITE_BUSY under concurrent scans.
func OpenDb(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to establish connection with db: %w", err)
	}

	return db, nil
}
