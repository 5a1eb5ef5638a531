// Package submit drives the per-posting submission state machine over an
// authenticated browser session. One engine owns one session for one
// marketplace; all submissions through it are serialized.
package submit

// State enumerates the positions of the submission state machine. Each
// transition has a single guard condition, so failure classification is
// testable per state.
type State int

// Machine states, in the order a successful submission passes through them.
const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateNavigating
	StateCaptchaCheck
	StateFormAvailabilityCheck
	StateFilling
	StateConfirming
	StateDone
	StateFailed
	StateSkipped
)

var stateNames = map[State]string{
	StateUnauthenticated:       "unauthenticated",
	StateAuthenticated:         "authenticated",
	StateNavigating:            "navigating",
	StateCaptchaCheck:          "captcha_check",
	StateFormAvailabilityCheck: "form_availability_check",
	StateFilling:               "filling",
	StateConfirming:            "confirming",
	StateDone:                  "done",
	StateFailed:                "failed",
	StateSkipped:               "skipped",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
