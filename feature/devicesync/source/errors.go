package source

import "fmt"

// FetchError is the single terminating error for a failed inventory fetch.
// It names the source so the engine can report which upstream broke the run.
type FetchError struct {
	// Source is the inventory name ("protection" or "mdm").
	Source string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s inventory: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchErr(source string, err error) error {
	return &FetchError{Source: source, Err: err}
}
