// Package testutils provides in-memory store fakes and a stub database
// handle for exercising the engine services without PostgreSQL.
package testutils
