package restore

import (
	"fmt"
	"strings"
)

// TabFailure records one tab the browser refused to create
type TabFailure struct {
	WindowIndex int
	TabIndex    int
	URL         string
	Err         error
}

// WindowFailure records a window that could not be created or cleaned up
type WindowFailure struct {
	WindowIndex int
	Err         error
}

// PartialFailureError is returned alongside a Result when some creations
// failed. Tabs and windows that were created are left open.
type PartialFailureError struct {
	Tabs    []TabFailure
	Windows []WindowFailure
}

func (e *PartialFailureError) Error() string {
	var parts []string
	for _, w := range e.Windows {
		parts = append(parts, fmt.Sprintf("window %d: %v", w.WindowIndex, w.Err))
	}
	for _, t := range e.Tabs {
		parts = append(parts, fmt.Sprintf("window %d tab %d (%s): %v", t.WindowIndex, t.TabIndex, t.URL, t.Err))
	}
	return fmt.Sprintf("restore partially failed (%d windows, %d tabs): %s",
		len(e.Windows), len(e.Tabs), strings.Join(parts, "; "))
}

// Unwrap exposes the individual causes to errors.Is and errors.As
func (e *PartialFailureError) Unwrap() []error {
	var errs []error
	for _, w := range e.Windows {
		errs = append(errs, w.Err)
	}
	for _, t := range e.Tabs {
		errs = append(errs, t.Err)
	}
	return errs
}
