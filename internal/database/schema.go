package database

import (
	"context"
	"log/slog"
)

// schema defines the tables and unique indexes the stores rely on.
// Every statement is idempotent.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS user SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS user_email ON TABLE user COLUMNS email UNIQUE",
	"DEFINE TABLE IF NOT EXISTS chat_message SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS chat_message_event ON TABLE chat_message COLUMNS event_id, created_at",
	"DEFINE TABLE IF NOT EXISTS event_chat_room SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS event_chat_room_event ON TABLE event_chat_room COLUMNS event_id UNIQUE",
	"DEFINE TABLE IF NOT EXISTS booking SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS booking_code ON TABLE booking COLUMNS confirmation_code UNIQUE",
}

// Migrate applies the schema.
func Migrate(ctx context.Context, exec Client[any]) error {
	for _, stmt := range schema {
		if err := exec.Execute(ctx, stmt, nil); err != nil {
			return WrapError(err, "apply schema")
		}
	}
	slog.InfoContext(ctx, "Database schema applied", "event", "db_schema_applied", "statements", len(schema))
	return nil
}
