package handler

import "errors"

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// ErrNilDependencyFatalLogMsg is used if a dependency handed to Init is nil.
	ErrNilDependencyFatalLogMsg = "handler dependency is nil"

	// InternalServerErrorMsg is the generic body of 500 responses.
	InternalServerErrorMsg = "Internal server error"

	// UnauthorizedMsg is the generic body of 401 responses.
	UnauthorizedMsg = "Unauthorized"
)

// ErrNilDependency is returned by handler Init functions called with a nil dependency.
var ErrNilDependency = errors.New(ErrNilDependencyFatalLogMsg)
