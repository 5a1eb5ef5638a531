package submit

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/andrii-d/autoapply/internal/marketplace"
)

// loginTimeout bounds the interactive login. It is generous because the
// browser runs headful and the marketplace may present a challenge the
// operator has to solve by hand.
const loginTimeout = 120 * time.Second

// CaptureSession performs a one-time interactive login in a visible browser
// and returns the resulting session state. Credentials are typed into the
// marketplace form and never stored anywhere.
func CaptureSession(ctx context.Context, mp marketplace.Marketplace, username, password string) (*SessionState, error) {
	sel := mp.Selectors()
	if sel.LoginURL == "" {
		return nil, fmt.Errorf("marketplace %s does not support login capture", mp.Name())
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", false),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowse := chromedp.NewContext(allocCtx)
	defer cancelBrowse()

	loginCtx, cancel := context.WithTimeout(browserCtx, loginTimeout)
	defer cancel()

	var cookies []*network.Cookie
	err := chromedp.Run(loginCtx,
		chromedp.Navigate(sel.LoginURL),
		chromedp.WaitVisible(sel.UsernameField, chromedp.ByQuery),
		chromedp.SendKeys(sel.UsernameField, username, chromedp.ByQuery),
		chromedp.SendKeys(sel.PasswordField, password, chromedp.ByQuery),
		chromedp.Click(sel.LoginSubmit, chromedp.ByQuery),
		// The login form disappearing is the signal that the session is live.
		chromedp.WaitNotPresent(sel.LoginFormMarker, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("login capture for %s failed: %w", mp.Name(), err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("login capture for %s yielded no cookies", mp.Name())
	}

	return FromNetworkCookies(mp.Name(), cookies), nil
}
