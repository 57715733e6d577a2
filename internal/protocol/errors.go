package protocol

import "errors"

var (
	ErrAuthRejected       = errors.New("protocol: authentication rejected")
	ErrMalformedLiteral   = errors.New("protocol: malformed literal")
	ErrProtocolViolation  = errors.New("protocol: protocol violation")
	ErrTransport          = errors.New("protocol: transport failure")
	ErrEvaluation         = errors.New("protocol: evaluation failed")
	ErrNoResult           = errors.New("protocol: no result from peer")
	ErrUnsupportedLiteral = errors.New("protocol: unsupported literal value")
)
