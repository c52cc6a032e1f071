package dagforge

import "errors"

// Exported errors for library consumers.
var (
	// ErrNoDatabase indicates no metadata database was configured.
	ErrNoDatabase = errors.New("dagforge: no database configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("dagforge: client is closed")
)
