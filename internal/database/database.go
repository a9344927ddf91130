// Package database provides PostgreSQL connection management and schema
// migrations for the auth service.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a connection pool from a DATABASE_URL style string and
// verifies the database is reachable.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Statements are idempotent so the migration can run on every start.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username VARCHAR(50) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id SERIAL PRIMARY KEY,
		name VARCHAR(50) UNIQUE NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS role_permissions (
		role VARCHAR(20) NOT NULL,
		permission_id INTEGER NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
		PRIMARY KEY (role, permission_id)
	)`,
	`INSERT INTO permissions (name, description) VALUES
		('users:read', 'List user accounts'),
		('users:write', 'Create and modify user accounts'),
		('users:delete', 'Delete user accounts'),
		('weather:read', 'Query weather data'),
		('time:read', 'Query time data')
	ON CONFLICT (name) DO NOTHING`,
	`INSERT INTO role_permissions (role, permission_id)
		SELECT 'admin', id FROM permissions
	ON CONFLICT DO NOTHING`,
	`INSERT INTO role_permissions (role, permission_id)
		SELECT 'user', id FROM permissions WHERE name IN ('weather:read', 'time:read')
	ON CONFLICT DO NOTHING`,
}

// Migrate applies the schema and seeds the permission catalogue.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}
