package paper

import "errors"

// Error kinds shared across the pipeline. Callers match them with errors.Is;
// wrapping adds operation context without losing the kind.
var (
	// ErrNotFound indicates an unknown paper or tag id.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a file path or DOI collision.
	ErrDuplicate = errors.New("already in library")

	// ErrExtraction indicates an unreadable or corrupt PDF.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbedding indicates an embedding provider failure.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConfiguration indicates invalid configuration, including an
	// embedding dimensionality mismatch between stored data and the
	// active provider.
	ErrConfiguration = errors.New("configuration error")
)

// IsNotFound reports whether err is an ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicate reports whether err is an ErrDuplicate.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// IsConfiguration reports whether err is an ErrConfiguration.
func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }
