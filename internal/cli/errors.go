package cli

import (
	"errors"
	"fmt"
)

var (
	// ErrNoManager is returned when no package manager is available.
	ErrNoManager = errors.New("no package manager detected; specify one with --source")

	// ErrNoPackages is returned when no packages are specified.
	ErrNoPackages = errors.New("no packages specified")

	// ErrAborted is returned when the user aborts an operation.
	ErrAborted = errors.New("operation aborted by user")
)

// catalogError gives a useful message when the catalog cannot be loaded.
type catalogError struct {
	path string
	err  error
}

func (e *catalogError) Error() string {
	return fmt.Sprintf("failed to load catalog %s: %v (create one or set general.catalog_path in the config)", e.path, e.err)
}

func (e *catalogError) Unwrap() error {
	return e.err
}
