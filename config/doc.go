// Package config provides environment-based configuration for the library
// backend: the Postgres DSN and ready-tuned connections for each of the
// supported database adapters (pgx pool, sql.DB, sqlx.DB), plus the HTTP
// listen address.
package config
