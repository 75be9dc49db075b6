package service

import "errors"

// Sentinel errors returned by the OAuth services. HTTP handlers map these onto
// RFC 6749 error responses; the string values match the wire-level error codes.
var (
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidGrant         = errors.New("invalid_grant")
	ErrInvalidRedirectURI   = errors.New("invalid_redirect_uri")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
)
