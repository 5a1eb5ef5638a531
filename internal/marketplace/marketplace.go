// Package marketplace provides the per-marketplace adapters and the registry
// that maps a marketplace identifier to its capability set: listing discovery,
// login probing, and reply submission mechanics.
package marketplace

import (
	"context"

	"github.com/andrii-d/autoapply/internal/types"
)

// Selectors describes the DOM surface of one marketplace: where to probe for an
// authenticated session, where the reply form lives, and which markers classify
// a page that offers no reply form. The submission engine is driven entirely by
// this structure, so adding a marketplace never changes engine logic.
type Selectors struct {
	// LoginProbeURL is an authenticated-only page used to verify the session.
	LoginProbeURL string
	// LoginFormMarker appears only when the session is not authenticated.
	LoginFormMarker string

	// Login capture surface, used once by the manual auth command.
	LoginURL      string
	UsernameField string
	PasswordField string
	LoginSubmit   string

	ReplyButton   string
	ReplyForm     string
	ReplyTextarea string
	SubmitButton  string

	SuccessMarker        string
	ErrorMarker          string
	AlreadyRepliedMarker string
	ClosedMarker         string
	AccessDeniedMarker   string
}

// FetchOptions bounds a listing scrape.
type FetchOptions struct {
	URL      string
	MaxPages int
}

// Marketplace is the capability set implemented once per marketplace.
type Marketplace interface {
	// Name returns the marketplace identifier carried as Posting.Source.
	Name() string
	// FetchListings scrapes up to opts.MaxPages listing pages and returns the
	// parsed postings. A single unparsable card is logged and dropped; only a
	// navigation-level failure aborts the fetch.
	FetchListings(ctx context.Context, opts FetchOptions) ([]types.Posting, error)
	// Selectors returns the DOM surface used by the submission engine.
	Selectors() Selectors
}
