package hexzone

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hexzone/blobstore"
)

var (
	// ErrNotFound is returned when an artifact does not exist or when a
	// lookup matches no region.
	ErrNotFound = errors.New("not found")

	// ErrNoInput is returned when an operation is given nothing to work on.
	ErrNoInput = errors.New("no input")
)

// ArtifactError attaches the name of the artifact an operation failed on.
//
// The original underlying error can be accessed via errors.Unwrap.
type ArtifactError struct {
	Name  string
	cause error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.cause)
}

func (e *ArtifactError) Unwrap() error { return e.cause }

func translateError(name string, err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, blobstore.ErrNotFound) && !errors.Is(err, ErrNotFound) {
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var ae *ArtifactError
	if name == "" || errors.As(err, &ae) {
		return err
	}
	return &ArtifactError{Name: name, cause: err}
}
