package repository

import "errors"

// ErrDuplicate is returned by Create when a unique key (id, channel name,
// user email) is already taken.
var ErrDuplicate = errors.New("duplicate key")
