package submit

import (
	"errors"

	"github.com/andrii-d/autoapply/internal/types"
)

// ErrAuthExpired is returned when the login probe fails after the single
// allowed re-authentication cycle. It is a marketplace-level hard stop: the
// engine refuses further postings for this run.
var ErrAuthExpired = errors.New("authentication expired, manual login capture required")

// Reason classifies a terminal submission outcome beyond success/failure, so
// operators can tell network flakiness, anti-automation defenses, and skip
// conditions apart.
type Reason string

// Outcome reasons.
const (
	ReasonNone             Reason = ""
	ReasonCaptchaDetected  Reason = "captcha_detected"
	ReasonAlreadySubmitted Reason = "already_submitted"
	ReasonOrderInactive    Reason = "order_inactive"
	ReasonFormNotFound     Reason = "form_not_found"
	ReasonTimeout          Reason = "timeout"
	ReasonAuthExpired      Reason = "auth_expired"
)

// Outcome is the structured result of one submission attempt. The engine
// converts every failure to an Outcome; nothing escapes its boundary except
// ErrAuthExpired.
type Outcome struct {
	Status  types.SubmissionStatus
	Reason  Reason
	Message string
}

// Success reports whether the attempt ended in a committed or prepared reply.
func (o Outcome) Success() bool {
	return o.Status == types.StatusSubmitted || o.Status == types.StatusPrepared
}

func submitted(message string) Outcome {
	return Outcome{Status: types.StatusSubmitted, Message: message}
}

func prepared(message string) Outcome {
	return Outcome{Status: types.StatusPrepared, Message: message}
}

func skipped(reason Reason, message string) Outcome {
	return Outcome{Status: types.StatusSkipped, Reason: reason, Message: message}
}

func failed(reason Reason, message string) Outcome {
	return Outcome{Status: types.StatusFailed, Reason: reason, Message: message}
}
