package docstore

import "errors"

var (
	// ErrNotFound is returned when no document exists for a collection and id.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrUnsupportedURL is returned when a database URL names a backend other than SQLite.
	ErrUnsupportedURL = errors.New("docstore: unsupported database url")

	// ErrInvalidDocument is returned when a document cannot be encoded or decoded.
	ErrInvalidDocument = errors.New("docstore: invalid document")
)
