// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to properly configure MySQL connections
// based on the application's configuration. SQLite is supported as a driver
// for local development and tests.
//
// # Connect
//
// The Connect function establishes a connection to the database with
// connection, read and write timeouts applied through the DSN, and verifies
// the connection with a ping before returning it.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema, used by the
// diagnostics feature to verify the sync tables exist with the expected
// columns before a reconciliation run is triggered.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "sync_documents")
package database
