package statement

import "fmt"

// NoInputError is returned when a run finds no candidate page images to
// process.
type NoInputError struct {
	Dir string
}

func (e *NoInputError) Error() string {
	return fmt.Sprintf("no statement pages found in %s", e.Dir)
}

// ExtractionFailure records a page whose extraction call failed. It is
// carried in the run report as a warning; one page's failure never aborts
// processing of the remaining pages.
type ExtractionFailure struct {
	Page PageKey
	Err  error
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("extracting %s page %d: %v", e.Page.DocumentID, e.Page.PageNumber, e.Err)
}

func (e *ExtractionFailure) Unwrap() error {
	return e.Err
}
