// Package database provides SQLite connectivity for Gray Logic Sensing.
//
// It manages:
//   - Connection setup with WAL mode and busy timeout
//   - Versioned schema migrations supplied by the caller as an fs.FS
//   - Connection lifecycle and health checks
//
// The description store is its only consumer today; it embeds its schema
// and applies it on open.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, schemaFS); err != nil {
//	    return err
//	}
//
// All queries use parameterised statements and the database file is created
// with owner-only permissions.
package database
