// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap returns the wrapped error so errors.Is can see through it.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// ledgerStatus maps the expected ledger errors to the status reported to
// the client.
var ledgerStatus = []struct {
	err    error
	status int
}{
	{database.ErrUserNotFound, http.StatusNotFound},
	{database.ErrInsufficientFunds, http.StatusBadRequest},
	{database.ErrInvalidAmount, http.StatusBadRequest},
	{database.ErrSelfTransfer, http.StatusBadRequest},
	{database.ErrAddressInUse, http.StatusConflict},
}

// FromLedger converts an expected ledger error into a trusted error. Any
// other error is returned as is and is reported as an internal error.
func FromLedger(err error) error {
	for _, ls := range ledgerStatus {
		if errors.Is(err, ls.err) {
			return NewTrusted(err, ls.status)
		}
	}

	return err
}
