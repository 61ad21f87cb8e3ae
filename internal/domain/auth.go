package domain

import "time"

// Purpose of a verification code request.
const (
	PurposeRegister = "register"
	PurposeReset    = "reset"
)

// VerificationCode is a short-lived one-time credential proving control
// of an email address. At most one pending code exists per email.
type VerificationCode struct {
	Email     string
	Code      string
	CreatedAt time.Time
	Expires   time.Time
}

func (c VerificationCode) Expired(now time.Time) bool {
	return c.Expires.Before(now)
}
