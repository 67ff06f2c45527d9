package repository

import (
	"context"
	"fmt"
	"github.com/jmoiron/sqlx"
)

func InitializeDBSchema(db *sqlx.DB) error {
	_, err := db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS ticket_sales (
	id UUID PRIMARY KEY,
	reference VARCHAR(64) NOT NULL UNIQUE,
	ticket_id VARCHAR(64) NOT NULL UNIQUE,
	ticket_type VARCHAR(32) NOT NULL,
	quantity INTEGER NOT NULL,
	amount BIGINT NOT NULL,
	payment_method VARCHAR(32) NOT NULL,
	payment_status VARCHAR(32) NOT NULL,
	user_ip_address VARCHAR(64) NOT NULL DEFAULT '',
	transfer_clicked_at TIMESTAMP WITH TIME ZONE,
	transfer_marked_at TIMESTAMP WITH TIME ZONE,
	last_reminder_sent TIMESTAMP WITH TIME ZONE,
	paid_at TIMESTAMP WITH TIME ZONE,
	search_text TEXT NOT NULL DEFAULT '',
	payload JSONB NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create ticket_sales table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE INDEX IF NOT EXISTS ticket_sales_transfer_clicks_idx
	ON ticket_sales (user_ip_address, ticket_type, transfer_clicked_at);
CREATE INDEX IF NOT EXISTS ticket_sales_status_idx
	ON ticket_sales (payment_status, transfer_marked_at);
CREATE INDEX IF NOT EXISTS ticket_sales_tickets_idx
	ON ticket_sales USING GIN ((payload -> 'tickets') jsonb_path_ops);`)
	if err != nil {
		return fmt.Errorf("failed to create ticket_sales indexes: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS admins (
	admin_id VARCHAR(16) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	role VARCHAR(32) NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	payload JSONB NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create admins table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS sale_events (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMP WITH TIME ZONE NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	reference VARCHAR(64) NOT NULL,
	event_payload JSONB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create sale_events table: %w", err)
	}
	return nil
}
