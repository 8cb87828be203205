package visitor

import (
	"errors"
	"fmt"

	"resume-visitor/internal/page"
)

// FailureKind classifies why a visit could not be reported.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// the request never completed
	FailureNetwork
	// the counting service answered with a non-2xx status
	FailureStatus
	// the body is not the expected json
	FailurePayload
	// the page has no counter heading
	FailureRender
	FailureUnknown
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNetwork:
		return "network"
	case FailureStatus:
		return "status"
	case FailurePayload:
		return "payload"
	case FailureRender:
		return "render"
	}
	return "unknown"
}

type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to counting service failed: %s", e.Err.Error())
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("counting service responded with status %d", e.Code)
}

type PayloadError struct {
	Reason string
	Err    error
}

func (e *PayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid counting service response: %s: %s", e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("invalid counting service response: %s", e.Reason)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Classify maps an error returned by the client to a FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var networkErr *NetworkError
	var statusErr *StatusError
	var payloadErr *PayloadError
	switch {
	case errors.As(err, &statusErr):
		return FailureStatus
	case errors.As(err, &payloadErr):
		return FailurePayload
	case errors.As(err, &networkErr):
		return FailureNetwork
	case errors.Is(err, page.ErrNoMatch):
		return FailureRender
	}
	return FailureUnknown
}
