// Package postgres implements the store interfaces against a PostgreSQL
// database, using the pgx driver through database/sql. Stores accept any
// store.DBTX, so the same code runs against a pooled connection or a
// caller-managed transaction.
package postgres
