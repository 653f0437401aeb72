package fs

import "errors"

// Error kinds returned by the virtual filesystem layer. Backends wrap
// them with context but always keep the kind reachable with errors.Is,
// so that front ends can translate failures to protocol error codes.
var (
	ErrNotFound   = errors.New("no such entry")
	ErrExist      = errors.New("entry already exists")
	ErrPermission = errors.New("permission denied")
	ErrInvalid    = errors.New("invalid argument")
	ErrIO         = errors.New("input/output error")
	ErrInternal   = errors.New("internal error")
)
