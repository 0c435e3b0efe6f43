/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package token

import "errors"

// Common errors. ErrInvalidToken is intentionally detail-free: the
// underlying verification failure is logged, never returned to the caller.
var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrUnsupportedAlgorithm = errors.New("unsupported JWT algorithm")
	ErrSigningFailed        = errors.New("unable to sign token")
)
