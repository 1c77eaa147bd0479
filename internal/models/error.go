package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Recovery flow errors
	ErrExpired          = errors.New("artifact has expired")
	ErrMalformed        = errors.New("malformed request")
	ErrUnknownRiskLevel = errors.New("unknown risk level")
	ErrMailDelivery     = errors.New("mail delivery failed")
)
