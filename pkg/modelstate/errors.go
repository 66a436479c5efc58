package modelstate

import "errors"

// ErrFormat marks errors caused by a value that could not be converted.
// AddModelException reports such errors with the attempted value instead of
// the error text.
var ErrFormat = errors.New("modelstate: value has an invalid format")
