// Package connection models the source and target databases a mapping reads
// from and writes to.
package connection

import (
	"time"

	"github.com/helixml/dagforge/domain/dialect"
	"github.com/helixml/dagforge/domain/repository"
)

// Connection describes how to reach a database. The password is stored and
// passed through as given.
type Connection struct {
	id        int64
	name      string
	kind      string
	host      string
	port      int
	database  string
	username  string
	password  string
	status    string
	createdAt time.Time
}

// NewConnection creates a new Connection in the Active state.
func NewConnection(name, kind, host string, port int, database, username, password string) Connection {
	return Connection{
		name:      name,
		kind:      kind,
		host:      host,
		port:      port,
		database:  database,
		username:  username,
		password:  password,
		status:    "Active",
		createdAt: time.Now(),
	}
}

// ReconstructConnection recreates a Connection from persistence.
func ReconstructConnection(
	id int64,
	name, kind, host string,
	port int,
	database, username, password, status string,
	createdAt time.Time,
) Connection {
	return Connection{
		id:        id,
		name:      name,
		kind:      kind,
		host:      host,
		port:      port,
		database:  database,
		username:  username,
		password:  password,
		status:    status,
		createdAt: createdAt,
	}
}

// ID returns the connection ID.
func (c Connection) ID() int64 { return c.id }

// Name returns the display name.
func (c Connection) Name() string { return c.name }

// Kind returns the raw database type tag, e.g. "oracle".
func (c Connection) Kind() string { return c.kind }

// Dialect returns the parsed database dialect.
func (c Connection) Dialect() dialect.Dialect { return dialect.Parse(c.kind) }

// Host returns the host name.
func (c Connection) Host() string { return c.host }

// Port returns the TCP port.
func (c Connection) Port() int { return c.port }

// Database returns the database or service name.
func (c Connection) Database() string { return c.database }

// Username returns the login user.
func (c Connection) Username() string { return c.username }

// Password returns the login password.
func (c Connection) Password() string { return c.password }

// Status returns the free-form status label.
func (c Connection) Status() string { return c.status }

// CreatedAt returns the creation time.
func (c Connection) CreatedAt() time.Time { return c.createdAt }

// WithID returns a copy with the given ID.
func (c Connection) WithID(id int64) Connection {
	c.id = id
	return c
}

// WithStatus returns a copy with the given status.
func (c Connection) WithStatus(status string) Connection {
	c.status = status
	return c
}

// Store persists connections.
type Store interface {
	repository.Store[Connection]
}

// WithName filters by the "name" column.
func WithName(name string) repository.Option {
	return repository.WithCondition("name", name)
}
