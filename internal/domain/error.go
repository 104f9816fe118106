package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderUnpaid         = errors.New("order is not paid")
	ErrOrderClaimedByOther = errors.New("order already claimed by another user")
	ErrPackageNotFound     = errors.New("package not found")
	ErrPartnerNotFound     = errors.New("partner not found")
	ErrNoPrepurchaseLeft   = errors.New("no prepurchased slots left")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidExecContext  = errors.New("invalid database execution context")
	ErrOperationFailed     = errors.New("database operation failed")
	ErrReadDatabaseRow     = errors.New("failed to read database row")
)

// TrustError marks failures that must hard-reject the request before any
// state is touched: bad signatures, missing required configuration.
// Only a TrustError (or a precondition sentinel above) may change the
// response we hand back to a payment provider.
type TrustError struct {
	Reason string
	Err    error
}

func (e *TrustError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trust: %s: %v", e.Reason, e.Err)
	}
	return "trust: " + e.Reason
}

func (e *TrustError) Unwrap() error { return e.Err }

func Trust(reason string, err error) *TrustError {
	return &TrustError{Reason: reason, Err: err}
}

func IsTrust(err error) bool {
	var te *TrustError
	return errors.As(err, &te)
}

// ProvisioningWarning marks best-effort side-effect failures (quota grant,
// subscription upsert, referral/commission). Callers log these and move on:
// once the order row itself committed, a secondary entitlement hiccup must
// not make the provider retry the payment.
type ProvisioningWarning struct {
	Step string
	Err  error
}

func (e *ProvisioningWarning) Error() string {
	return fmt.Sprintf("provisioning: %s: %v", e.Step, e.Err)
}

func (e *ProvisioningWarning) Unwrap() error { return e.Err }

func Provisioning(step string, err error) *ProvisioningWarning {
	return &ProvisioningWarning{Step: step, Err: err}
}

func IsProvisioning(err error) bool {
	var pw *ProvisioningWarning
	return errors.As(err, &pw)
}
