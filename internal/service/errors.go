package service

import "errors"

var (
	ErrReadFailure     = errors.New("sensor read failed")
	ErrValidation      = errors.New("sensor value out of range")
	ErrInvalidLevel    = errors.New("invalid log level")
	ErrLoopUnavailable = errors.New("monitor loop unavailable")
)
