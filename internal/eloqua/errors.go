package eloqua

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPollTimeout is matched by errors.Is for any PollTimeoutError.
var ErrPollTimeout = errors.New("sync poll limit reached")

// SyncFailedError reports a sync that finished in warning, error, or an
// unrecognised status.
type SyncFailedError struct {
	URI    string
	Status SyncStatus
	Raw    string
	Logs   []string
}

func (e *SyncFailedError) Error() string {
	status := string(e.Status)
	if e.Status == StatusUnknown && e.Raw != "" {
		status = fmt.Sprintf("%s (%q)", e.Status, e.Raw)
	}
	msg := fmt.Sprintf("sync %s finished with status %s", e.URI, status)
	if len(e.Logs) > 0 {
		msg += ": " + strings.Join(e.Logs, "; ")
	}
	return msg
}

// PollTimeoutError reports a sync still running after the poll budget.
type PollTimeoutError struct {
	URI   string
	Polls int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("sync %s still running after %d polls", e.URI, e.Polls)
}

func (e *PollTimeoutError) Unwrap() error {
	return ErrPollTimeout
}
