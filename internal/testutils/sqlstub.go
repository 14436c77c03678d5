package testutils

import (
	"database/sql"
	"database/sql/driver"
	"sync"
)

// stubDriver backs the *sql.DB handle returned by NewStubDB. It supports
// exactly what the service transaction wrapper needs: Begin, Commit, and
// Rollback. Any statement execution fails loudly, which keeps tests
// honest about going through the fakes instead of the handle.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return stubConn{}, nil
}

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, driver.ErrSkip
}

func (stubConn) Close() error {
	return nil
}

func (stubConn) Begin() (driver.Tx, error) {
	return stubTx{}, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

// NewStubDB returns a *sql.DB whose transactions always begin and commit
// successfully. Pair it with the in-memory fakes so service code can run
// its RunInTransaction path unchanged.
func NewStubDB() *sql.DB {
	registerStubDriver.Do(func() {
		sql.Register("testutils-stub", stubDriver{})
	})

	db, err := sql.Open("testutils-stub", "")
	if err != nil {
		// The stub driver's Open never fails.
		panic(err)
	}
	return db
}
