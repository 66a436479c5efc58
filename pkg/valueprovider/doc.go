// Package valueprovider exposes request data as flat, string-keyed values that
// the binding engine can query by model name.
//
// Keys follow the dotted and bracketed path syntax used by HTML forms:
//
//	order.Customer.Name=Jane
//	order.Lines[0].Sku=A-1
//	order.Lines[1].Sku=B-2
//	order.Tags=go,web
//	order.Meta[color]=red
//
// # Providers
//
//   - Values: any map[string][]string, optionally tagged with a binding source
//     (NewQuery, NewForm, NewRoute)
//   - JSON: a JSON document flattened into the same key syntax
//   - Elemental: a single key/value pair, used when binding multi-value entries
//   - Composite: an ordered list of providers queried in turn
//
// Providers that declare a binding source implement SourceFilter so the
// binding engine can restrict a model to, for example, query string data only.
//
// # Request factories
//
// FromQuery, FromForm, FromRoute and FromJSON build providers from an
// *http.Request; FromRequest combines them in the order form, route, query,
// JSON. Route values are read from chi's route context.
//
// # Prefix lookups
//
// Lookups are case-insensitive. ContainsPrefix("order.Lines") is true when any
// key equals the prefix or continues it with '.' or '['. GetKeysFromPrefix
// returns only the first path segment after the prefix:
//
//	GetKeysFromPrefix("order")        // {"Customer": "order.Customer", "Lines": "order.Lines", ...}
//	GetKeysFromPrefix("order.Meta")   // {"color": "order.Meta[color]"}
package valueprovider
