package model

// ResetTokenStatus is the outcome of a reset token check.
type ResetTokenStatus string

const (
	ResetTokenValid   ResetTokenStatus = "valid"
	ResetTokenInvalid ResetTokenStatus = "invalid"
	ResetTokenExpired ResetTokenStatus = "expired"
)

// ResetTokenCheck is a structured reset token verdict with a human-readable reason.
type ResetTokenCheck struct {
	Status  ResetTokenStatus
	Message string
}

func (c ResetTokenCheck) Valid() bool {
	return c.Status == ResetTokenValid
}
