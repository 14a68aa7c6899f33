// Package testdb provides a scriptable database/sql driver for exercising
// transaction behavior without a running Postgres. Statements are answered
// by substring-matching against registered responses; executed statements
// and commit/rollback counts are recorded for assertions.
package testdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Response answers statements whose text contains Match. A response with
// Rows set answers queries; otherwise it answers execs with RowsAffected.
type Response struct {
	Match string

	Cols []string
	Rows [][]driver.Value

	RowsAffected int64
	Err          error
}

// Recorder holds what the fake driver observed.
type Recorder struct {
	mu        sync.Mutex
	responses []Response

	Statements []string
	Commits    int
	Rollbacks  int
}

// Open returns a *sql.DB backed by the scripted responses plus the recorder
// to assert against. Statements with no matching response fail the query.
func Open(responses ...Response) (*sql.DB, *Recorder) {
	rec := &Recorder{responses: responses}
	return sql.OpenDB(connector{rec}), rec
}

// Saw reports whether any recorded statement contains substr.
func (r *Recorder) Saw(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.Statements {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func (r *Recorder) record(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Statements = append(r.Statements, query)
}

func (r *Recorder) respond(query string) (Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if strings.Contains(query, resp.Match) {
			return resp, resp.Err
		}
	}
	return Response{}, fmt.Errorf("testdb: no response registered for statement %q", query)
}

type connector struct{ rec *Recorder }

func (c connector) Connect(context.Context) (driver.Conn, error) { return &conn{rec: c.rec}, nil }
func (c connector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, fmt.Errorf("testdb: use sql.OpenDB")
}

type conn struct{ rec *Recorder }

func (c *conn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("testdb: prepared statements not supported")
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) { return &tx{rec: c.rec}, nil }

func (c *conn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return &tx{rec: c.rec}, nil
}

func (c *conn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.rec.record(query)
	resp, err := c.rec.respond(query)
	if err != nil {
		return nil, err
	}
	return &rows{cols: resp.Cols, data: resp.Rows}, nil
}

func (c *conn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.rec.record(query)
	resp, err := c.rec.respond(query)
	if err != nil {
		return nil, err
	}
	return driver.RowsAffected(resp.RowsAffected), nil
}

type tx struct{ rec *Recorder }

func (t *tx) Commit() error {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.Commits++
	return nil
}

func (t *tx) Rollback() error {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.Rollbacks++
	return nil
}

type rows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *rows) Columns() []string { return r.cols }
func (r *rows) Close() error      { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.i])
	r.i++
	return nil
}
