/**
 * @description
 * This file defines the error taxonomy shared by the workflow, the application
 * service, and the HTTP clients. Callers branch on these sentinels with
 * errors.Is to decide whether a failure is a local validation problem, a
 * transport fault, a business denial, or an unavailable scoring collaborator.
 */

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport indicates a network failure or a non-2xx HTTP status from a
	// collaborator. The envelope contents of a non-2xx response are ignored.
	ErrTransport = errors.New("transport failure")

	// ErrScoringUnavailable indicates the risk-scoring service was unreachable
	// or returned a malformed response. It must never be treated as a denial.
	ErrScoringUnavailable = errors.New("risk scoring unavailable")

	// ErrSubmissionInFlight indicates a duplicate submit attempt while an
	// earlier submission has not completed.
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// ValidationError reports a required selection that is missing or malformed.
// It is raised before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ApplicationDenied reports a success=false application response carrying a
// business message from the server (e.g. already enrolled, risk denial). The
// message is surfaced to the user verbatim.
type ApplicationDenied struct {
	Message string
}

func (e *ApplicationDenied) Error() string {
	return fmt.Sprintf("application denied: %s", e.Message)
}
