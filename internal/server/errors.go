package server

import "errors"

var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrAlreadyAttached      = errors.New("debug stream is already attached to a bus")
)
