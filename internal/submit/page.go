package submit

import (
	"context"
	"errors"
	"time"
)

// errWaitTimeout marks a bounded wait that elapsed without the selector
// appearing. The engine classifies it as a Timeout outcome rather than a
// generic failure.
var errWaitTimeout = errors.New("wait timed out")

// isTimeout reports whether an error is a bounded-wait or deadline expiry.
func isTimeout(err error) bool {
	return errors.Is(err, errWaitTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// page abstracts the browser operations the state machine needs. The chromedp
// implementation is the only one used in production; tests drive the machine
// through a scripted fake, which keeps every transition guard testable without
// a live browser.
type page interface {
	// Navigate opens a URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error
	// Exists reports whether any element matches the CSS selector.
	Exists(ctx context.Context, selector string) (bool, error)
	// Text returns the text content of the first element matching the selector.
	Text(ctx context.Context, selector string) (string, error)
	// HTML returns the full rendered document.
	HTML(ctx context.Context) (string, error)
	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error
	// Fill sets the value of the first element matching the selector.
	Fill(ctx context.Context, selector, value string) error
	// WaitVisible blocks until the selector is visible or the bound elapses,
	// returning errWaitTimeout in the latter case.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// Close releases the page.
	Close()
}
