package deploy

import "errors"

var (
	// ErrPrecondition is returned when a command cannot run against the
	// current ledger or on-chain state. Nothing is written in that case.
	ErrPrecondition = errors.New("precondition failed")
	// ErrClassHashUnrecoverable is returned when a declaration was rejected as
	// a redeclaration but the existing class hash could not be extracted.
	ErrClassHashUnrecoverable = errors.New("class already declared but its hash could not be recovered")
	// ErrVerificationFailed is returned when the class at a deployed address is
	// not the class that was deployed.
	ErrVerificationFailed = errors.New("deployment verification failed")
	// ErrUnexpectedUpgradeStatus is returned when the gatekeeper is not in the
	// status an upgrade step should have produced.
	ErrUnexpectedUpgradeStatus = errors.New("unexpected upgrade status")
)
