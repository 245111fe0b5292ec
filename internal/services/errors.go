package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetkoprulu/rtrp/arcade/internal/api"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/expense"
)

type ErrorKind string

const (
	KindAuthFailure     ErrorKind = "auth_failure"
	KindApprovalDenied  ErrorKind = "approval_denied"
	KindPaymentDenied   ErrorKind = "payment_denied"
	KindNetworkOrServer ErrorKind = "network_or_server"
	KindValidation      ErrorKind = "validation"
)

var ErrBusy = errors.New("another request is in progress")

// WorkflowError is the single user-visible failure of a workflow step.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	return e.Message
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func newValidationError(message string) *WorkflowError {
	return &WorkflowError{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of a WorkflowError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// classify turns an error from the api or expense layers into a WorkflowError.
// fallback prefixes messages that carry no server text.
func classify(err error, fallback string) error {
	if err == nil {
		return nil
	}

	var we *WorkflowError
	if errors.As(err, &we) {
		return err
	}

	switch {
	case errors.Is(err, api.ErrLoginFailed):
		return &WorkflowError{Kind: KindAuthFailure, Message: "Authentication failed: " + trimSentinel(err, api.ErrLoginFailed), Err: err}
	case api.IsAuthFailure(err):
		return &WorkflowError{Kind: KindAuthFailure, Message: api.Message(err), Err: err}
	case errors.Is(err, api.ErrNotApproved):
		return &WorkflowError{Kind: KindApprovalDenied, Message: "Provider not approved", Err: err}
	case errors.Is(err, expense.ErrPaymentDenied):
		return &WorkflowError{Kind: KindPaymentDenied, Message: "Expense not approved", Err: err}
	case errors.Is(err, expense.ErrSDKNotLoaded):
		return &WorkflowError{Kind: KindNetworkOrServer, Message: "SDK not loaded", Err: err}
	case errors.Is(err, api.ErrOutcomeUnknown):
		return &WorkflowError{Kind: KindNetworkOrServer, Message: "Event outcome unknown, the server may have recorded it", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &WorkflowError{Kind: KindNetworkOrServer, Message: fallback + ": request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &WorkflowError{Kind: KindNetworkOrServer, Message: fallback + ": request cancelled", Err: err}
	}

	return &WorkflowError{Kind: KindNetworkOrServer, Message: serverMessage(err, fallback), Err: err}
}

func serverMessage(err error, fallback string) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}

	for _, sentinel := range []error{api.ErrEventRejected, api.ErrIntentRejected, api.ErrVerificationFailed, api.ErrWalletRejected} {
		if errors.Is(err, sentinel) {
			return trimSentinel(err, sentinel)
		}
	}

	return fmt.Sprintf("%s: %s", fallback, api.Message(err))
}

// trimSentinel drops the "sentinel: " prefix of errors built as
// fmt.Errorf("%w: %s", sentinel, message).
func trimSentinel(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
