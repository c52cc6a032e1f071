// Package introspect reads table metadata from source database catalogs.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/dialect"
	"github.com/helixml/dagforge/domain/mapping"
)

// ErrTableNotFound indicates the catalog has no such table.
var ErrTableNotFound = errors.New("table not found in source catalog")

// ErrUnsupportedSource indicates no introspector handles the connection type.
var ErrUnsupportedSource = errors.New("unsupported source connection type")

// DefaultTimeout bounds a single catalog call.
const DefaultTimeout = 30 * time.Second

// Router dispatches catalog calls to the introspector registered for the
// connection's dialect.
type Router struct {
	sources map[string]mapping.Introspector
	timeout time.Duration
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithTimeout bounds every Describe and Tables call. Zero disables it.
func WithTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.timeout = d }
}

// WithSource registers an introspector for a dialect, replacing any default.
func WithSource(d dialect.Dialect, source mapping.Introspector) RouterOption {
	return func(r *Router) { r.sources[d.String()] = source }
}

// NewRouter creates a Router with the Oracle and Postgres introspectors.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		sources: map[string]mapping.Introspector{
			dialect.Oracle.String():   NewOracle(),
			dialect.Postgres.String(): NewPostgres(),
		},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) source(conn connection.Connection) (mapping.Introspector, error) {
	s, ok := r.sources[conn.Dialect().String()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, conn.Kind())
	}
	return s, nil
}

func (r *Router) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Describe reads metadata for sourceTable on conn.
func (r *Router) Describe(ctx context.Context, conn connection.Connection, sourceTable string) (mapping.TableMetadata, error) {
	s, err := r.source(conn)
	if err != nil {
		return mapping.TableMetadata{}, err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return s.Describe(ctx, conn, sourceTable)
}

// Tables lists the tables visible through conn.
func (r *Router) Tables(ctx context.Context, conn connection.Connection) ([]string, error) {
	s, err := r.source(conn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return s.Tables(ctx, conn)
}
