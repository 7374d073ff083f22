package models

import "errors"

// ErrNotFound is returned by stores when a requested row does not exist.
var ErrNotFound = errors.New("not found")
