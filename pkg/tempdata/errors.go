package tempdata

import "errors"

var (
	ErrUnsupportedType = errors.New("tempdata: type cannot be serialized")
	ErrDecode          = errors.New("tempdata: malformed payload")
	ErrCookieTooLarge  = errors.New("tempdata: cookie exceeds the size limit")
	ErrNotLoaded       = errors.New("tempdata: dictionary has no provider")
	ErrRedisNotReady   = errors.New("tempdata: redis did not become ready within the given time period")
	ErrRedisURL        = errors.New("tempdata: failed to parse redis connection string")
)
