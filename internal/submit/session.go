package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Cookie is one browser cookie in a captured session state.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// SessionState is an authenticated browsing context captured out-of-band by
// the auth command and consumed read-only by the engine. One file per
// marketplace; it is never shared across marketplaces.
type SessionState struct {
	Marketplace string    `json:"marketplace"`
	CapturedAt  time.Time `json:"captured_at"`
	Cookies     []Cookie  `json:"cookies"`
}

// LoadSessionState reads a session-state file.
func LoadSessionState(path string) (*SessionState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session state %s: %w", path, err)
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session state %s: %w", path, err)
	}
	if len(state.Cookies) == 0 {
		return nil, fmt.Errorf("session state %s contains no cookies", path)
	}

	return &state, nil
}

// Save writes the session state with owner-only permissions; the cookies grant
// full account access.
func (s *SessionState) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session state %s: %w", path, err)
	}
	return nil
}

// apply installs the captured cookies into a browser context.
func (s *SessionState) apply() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range s.Cookies {
			setter := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				setter = setter.WithExpires(&expires)
			}
			if err := setter.Do(ctx); err != nil {
				return fmt.Errorf("failed to set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

// FromNetworkCookies converts cookies read off a live browser into a session
// state ready to save.
func FromNetworkCookies(marketplace string, cookies []*network.Cookie) *SessionState {
	state := &SessionState{
		Marketplace: marketplace,
		CapturedAt:  time.Now().UTC(),
	}
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return state
}
