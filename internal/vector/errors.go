package vector

import "errors"

var (
	// ErrIndexNotFound is returned when the named index does not exist.
	ErrIndexNotFound = errors.New("index not found")
	// ErrDuplicateIndex is returned by CreateIndex when the name is already taken.
	ErrDuplicateIndex = errors.New("index already exists")
	// ErrDimensionMismatch is returned when vector lengths disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrVectorNotFound is returned when no embedding has the given id.
	ErrVectorNotFound = errors.New("vector not found")
	// ErrInsufficientData is returned when an index holds fewer embeddings than requested clusters.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidArgument is returned for malformed names, dimensions, or metrics.
	ErrInvalidArgument = errors.New("invalid argument")
)
