// Where: cli/internal/domain/failure/failure.go
// What: Error taxonomy for build steps.
// Why: Let the command layer report resolution, archive and configuration
// failures uniformly while keeping the underlying cause reachable.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal build-step failure.
type Kind string

const (
	// KindResolution covers artifacts that cannot be found or downloaded.
	KindResolution Kind = "resolution"
	// KindArchive covers corrupt archives, missing sources and unwritable targets.
	KindArchive Kind = "archive"
	// KindConfig covers invalid build-step configuration.
	KindConfig Kind = "config"
)

// Error wraps an underlying error with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Resolution wraps err as a resolution failure. A nil err yields nil.
func Resolution(op string, err error) error {
	return wrap(KindResolution, op, err)
}

// Archive wraps err as an archive I/O failure. A nil err yields nil.
func Archive(op string, err error) error {
	return wrap(KindArchive, op, err)
}

// Config wraps err as a configuration failure. A nil err yields nil.
func Config(op string, err error) error {
	return wrap(KindConfig, op, err)
}

// Configf builds a configuration failure from a format string.
func Configf(format string, args ...any) error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) && existing.Op == op {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost failure in err's chain, or the
// empty kind when err carries none.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}

// Is reports whether err carries a failure of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
