package models

import "fmt"

// ValidationError covers malformed or semantically invalid requests.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthorizationError covers ownership failures and rail mismatches.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// NotFoundError covers missing events, earnings, profiles and destinations.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// StepUpRequiredCode is the machine-readable code clients use to prompt for
// a fresh OTP challenge.
const StepUpRequiredCode = "STEP_UP_REQUIRED"

// VerificationRequiredError signals a missing, expired or already-consumed
// step-up token.
type VerificationRequiredError struct {
	Code string
	Msg  string
}

func (e *VerificationRequiredError) Error() string { return e.Msg }

// NewStepUpRequired returns the standard step-up error.
func NewStepUpRequired(msg string) *VerificationRequiredError {
	return &VerificationRequiredError{Code: StepUpRequiredCode, Msg: msg}
}

// InsufficientBalanceError echoes the available balance so clients can show
// the organizer what they can actually withdraw.
type InsufficientBalanceError struct {
	Requested int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("requested %d cents but only %d available", e.Requested, e.Available)
}

// SettlementNotReadyError is returned when an event's funds are still in the
// hold window or under an administrative lock.
type SettlementNotReadyError struct {
	Status string
}

func (e *SettlementNotReadyError) Error() string {
	return "settlement is not ready for withdrawal (status: " + e.Status + ")"
}

// ExternalRailError wraps a failed call to an external payout rail.
type ExternalRailError struct {
	Provider string
	Reason   string
}

func (e *ExternalRailError) Error() string {
	return e.Provider + " rail error: " + e.Reason
}
