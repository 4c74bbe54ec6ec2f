package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDraftIncomplete is matched by errors.Is for every IncompleteDraftError.
var ErrDraftIncomplete = errors.New("wizard: draft incomplete")

// ErrCommitInProgress is returned by Finalize while another commit on the same wizard is running.
var ErrCommitInProgress = errors.New("wizard: commit already in progress")

// IncompleteDraftError is returned by Finalize when required slices are unset.
type IncompleteDraftError struct {
	Missing []string
}

func (e *IncompleteDraftError) Error() string {
	return fmt.Sprintf("wizard: draft incomplete: missing %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteDraftError) Is(target error) bool {
	return target == ErrDraftIncomplete
}

// CommitRejectedError wraps a failure of the appointment creation call.
type CommitRejectedError struct {
	Err error
}

func (e *CommitRejectedError) Error() string {
	return fmt.Sprintf("wizard: appointment creation rejected: %v", e.Err)
}

func (e *CommitRejectedError) Unwrap() error {
	return e.Err
}
