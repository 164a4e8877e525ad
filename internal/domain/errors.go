package domain

import "errors"

var (
	ErrResourceNotFound   = errors.New("resource not found")
	ErrUnknownCountry     = errors.New("unknown country")
	ErrNoCandidates       = errors.New("no candidate names")
	ErrUnknownEventType   = errors.New("unknown event type")
	ErrInvalidAttachPoint = errors.New("invalid attach point")
	ErrMissingUserID      = errors.New("event requires a user id")
	ErrNameUnavailable    = errors.New("no name available")
)
