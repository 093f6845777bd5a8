package data

import "errors"

// ErrNotFound is returned in APIs if the requested record is not found
var ErrNotFound = errors.New("not found")

// ErrPermission is returned when a caller does not hold the permission a
// subject requires. Permission checks fail closed -- any problem with a
// credential surfaces as this error.
var ErrPermission = errors.New("permission denied")

// ErrDisabled is returned by data-plane APIs while the center is disabled
var ErrDisabled = errors.New("safety center disabled")

// ErrUnknownSource is returned when data is pushed for a source that is not
// in the center config
var ErrUnknownSource = errors.New("unknown safety source")
