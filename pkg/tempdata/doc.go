// Package tempdata keeps short-lived values between two requests, the usual
// carrier for a status message shown after a redirect.
//
// A Dictionary tracks which values the current request read. On Save every
// value that was read and not kept is dropped and the rest is written back
// through a Provider:
//
//	d := tempdata.FromContext(r.Context())
//	d.Set("status", "Saved")          // survives until read
//	msg, _ := d.Get("status")         // gone after this request
//	d.Keep("status")                  // unless kept
//
// Two providers ship with the package. CookieProvider encrypts the values
// into one cookie with keys derived from a cookie.Manager for the "tempdata"
// purpose. StoreProvider keeps them in a Store, usually Redis, under a random
// session id carried in a signed cookie.
//
// Values are serialized with BSONSerializer, which accepts strings, bools,
// integers, float64, time.Time, uuid.UUID and slices or string-keyed maps of
// those. Middleware loads the dictionary lazily and saves it before the
// response headers are sent.
package tempdata
