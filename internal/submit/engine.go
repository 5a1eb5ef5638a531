package submit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/andrii-d/autoapply/internal/marketplace"
)

const (
	// formTimeout bounds the wait for the reply form after clicking the
	// reply control.
	formTimeout = 10 * time.Second
	// confirmTimeout bounds the wait for a success or error marker after the
	// commit action.
	confirmTimeout = 10 * time.Second
)

// session is the authenticated browsing context an engine drives. The chromedp
// browserSession is the production implementation; tests substitute a scripted
// one.
type session interface {
	newPage() page
	close()
}

// sessionFactory opens a session from the on-disk session state. Re-invoking
// it is the re-authentication cycle: the state file is reloaded from scratch.
type sessionFactory func(ctx context.Context) (session, error)

// Engine advances the submission state machine for one marketplace. It owns
// exactly one authenticated session, serializes all submissions through it,
// and converts every per-posting failure into a structured Outcome.
type Engine struct {
	mp          marketplace.Marketplace
	sessionPath string
	testMode    bool

	openSession sessionFactory

	mu            sync.Mutex
	state         State
	session       session
	authenticated bool
	authExpired   bool
}

// NewEngine creates an engine for one marketplace. The session state at
// sessionPath is loaded lazily on the first submission.
func NewEngine(mp marketplace.Marketplace, sessionPath string, testMode bool) *Engine {
	e := &Engine{
		mp:          mp,
		sessionPath: sessionPath,
		testMode:    testMode,
		state:       StateUnauthenticated,
	}
	e.openSession = func(ctx context.Context) (session, error) {
		state, err := LoadSessionState(sessionPath)
		if err != nil {
			return nil, err
		}
		return newBrowserSession(ctx, state)
	}
	return e
}

// State returns the machine position reached by the most recent submission.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Submit attempts to commit replyText on the posting page at link. The outcome
// is always structured; the only errors returned are ErrAuthExpired (the
// marketplace-level hard stop) and a failure to start the browser session at
// all.
func (e *Engine) Submit(ctx context.Context, link, replyText string) (Outcome, error) {
	// One authenticated session per marketplace is a strict single-writer
	// resource; concurrent use would corrupt navigation state.
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.authExpired {
		return failed(ReasonAuthExpired, "authentication expired earlier in this run"), ErrAuthExpired
	}
	if replyText == "" {
		return failed(ReasonNone, "no reply text available"), nil
	}
	if link == "" {
		return failed(ReasonNone, "no posting link available"), nil
	}

	if err := e.ensureAuthenticated(ctx); err != nil {
		if err == ErrAuthExpired {
			e.authExpired = true
			return failed(ReasonAuthExpired, "not logged in, authentication required"), ErrAuthExpired
		}
		return failed(ReasonNone, fmt.Sprintf("failed to start browser session: %v", err)), err
	}

	pg := e.session.newPage()
	defer pg.Close()

	return e.run(ctx, pg, link, replyText), nil
}

// Close releases the browser session. Safe on every exit path, including
// cancellation, so no authenticated session is left unattended.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeSession()
}

func (e *Engine) closeSession() {
	if e.session != nil {
		e.session.close()
		e.session = nil
	}
	e.authenticated = false
}

// ensureAuthenticated loads the session and probes the login exactly once per
// run, with a single re-authentication cycle on probe failure.
func (e *Engine) ensureAuthenticated(ctx context.Context) error {
	if e.authenticated {
		return nil
	}

	if e.session == nil {
		s, err := e.openSession(ctx)
		if err != nil {
			return err
		}
		e.session = s
	}

	ok, err := e.probeLogin(ctx)
	if err != nil || !ok {
		log.Printf("[SUBMIT:%s] login probe failed, re-authenticating once", e.mp.Name())
		e.closeSession()

		s, err := e.openSession(ctx)
		if err != nil {
			return err
		}
		e.session = s

		ok, err = e.probeLogin(ctx)
		if err != nil {
			return err
		}
		if !ok {
			e.closeSession()
			return ErrAuthExpired
		}
	}

	e.authenticated = true
	e.state = StateAuthenticated
	return nil
}

// probeLogin opens the authenticated-only probe page and reports whether the
// session is still logged in (the login form marker must be absent).
func (e *Engine) probeLogin(ctx context.Context) (bool, error) {
	sel := e.mp.Selectors()

	pg := e.session.newPage()
	defer pg.Close()

	if err := pg.Navigate(ctx, sel.LoginProbeURL); err != nil {
		return false, err
	}
	loggedOut, err := pg.Exists(ctx, sel.LoginFormMarker)
	if err != nil {
		return false, err
	}
	return !loggedOut, nil
}

// run advances the per-posting state machine on an open page. Every terminal
// state maps to one Outcome; nothing is retried here.
func (e *Engine) run(ctx context.Context, pg page, link, replyText string) Outcome {
	sel := e.mp.Selectors()

	e.state = StateNavigating
	if err := pg.Navigate(ctx, link); err != nil {
		e.state = StateFailed
		if isTimeout(err) {
			return failed(ReasonTimeout, "page load timed out")
		}
		return failed(ReasonNone, fmt.Sprintf("failed to open posting page: %v", err))
	}

	e.state = StateCaptchaCheck
	detected, err := detectCaptcha(ctx, pg)
	if err != nil {
		e.state = StateFailed
		return failed(ReasonNone, fmt.Sprintf("captcha check failed: %v", err))
	}
	if detected {
		e.state = StateFailed
		return failed(ReasonCaptchaDetected, "CAPTCHA detected, manual intervention required")
	}

	e.state = StateFormAvailabilityCheck
	hasReplyControl, err := pg.Exists(ctx, sel.ReplyButton)
	if err != nil {
		e.state = StateFailed
		return failed(ReasonNone, fmt.Sprintf("failed to inspect posting page: %v", err))
	}
	if !hasReplyControl {
		return e.classifyMissingForm(ctx, pg, sel)
	}

	if err := pg.Click(ctx, sel.ReplyButton); err != nil {
		e.state = StateFailed
		return failed(ReasonNone, fmt.Sprintf("failed to open reply form: %v", err))
	}
	if err := pg.WaitVisible(ctx, sel.ReplyForm, formTimeout); err != nil {
		e.state = StateFailed
		if isTimeout(err) {
			return failed(ReasonTimeout, "reply form did not appear")
		}
		return failed(ReasonNone, fmt.Sprintf("failed waiting for reply form: %v", err))
	}

	if sel.AccessDeniedMarker != "" {
		denied, err := pg.Exists(ctx, sel.AccessDeniedMarker)
		if err == nil && denied {
			e.state = StateFailed
			text, _ := pg.Text(ctx, sel.AccessDeniedMarker)
			return failed(ReasonNone, fmt.Sprintf("access error: %s", text))
		}
	}

	e.state = StateFilling
	if err := pg.Fill(ctx, sel.ReplyTextarea, replyText); err != nil {
		e.state = StateFailed
		return failed(ReasonNone, fmt.Sprintf("failed to fill reply field: %v", err))
	}

	// Test mode is a dry-run safety gate: the reply is composed but the commit
	// action is never invoked.
	if e.testMode {
		e.state = StateDone
		return prepared("test mode: reply prepared but not submitted")
	}

	e.state = StateConfirming
	if err := pg.Click(ctx, sel.SubmitButton); err != nil {
		e.state = StateFailed
		return failed(ReasonNone, fmt.Sprintf("failed to invoke commit action: %v", err))
	}

	if err := pg.WaitVisible(ctx, sel.SuccessMarker, confirmTimeout); err != nil {
		e.state = StateFailed
		if !isTimeout(err) {
			return failed(ReasonNone, fmt.Sprintf("failed waiting for confirmation: %v", err))
		}
		// No success marker within the bound: an inline error marker gives a
		// precise message, otherwise the outcome is a timeout.
		hasError, existsErr := pg.Exists(ctx, sel.ErrorMarker)
		if existsErr == nil && hasError {
			text, _ := pg.Text(ctx, sel.ErrorMarker)
			return failed(ReasonNone, fmt.Sprintf("submission error: %s", text))
		}
		return failed(ReasonTimeout, "no confirmation within wait bound")
	}

	e.state = StateDone
	return submitted("reply submitted successfully")
}

// classifyMissingForm decides why no reply control exists: an already-replied
// marker and a closed marker are skips, anything else is a failure.
func (e *Engine) classifyMissingForm(ctx context.Context, pg page, sel marketplace.Selectors) Outcome {
	if already, err := pg.Exists(ctx, sel.AlreadyRepliedMarker); err == nil && already {
		e.state = StateSkipped
		return skipped(ReasonAlreadySubmitted, "reply already submitted for this posting")
	}
	if closed, err := pg.Exists(ctx, sel.ClosedMarker); err == nil && closed {
		e.state = StateSkipped
		return skipped(ReasonOrderInactive, "posting is no longer active")
	}
	e.state = StateFailed
	return failed(ReasonFormNotFound, "no reply control found on posting page")
}
