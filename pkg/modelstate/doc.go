// Package modelstate records what happened to every field while a request was
// bound and validated.
//
// Dictionary is keyed by the full model path of each field ("order.lines[0].sku")
// and keeps the raw and attempted values, the errors and the validation state
// of each entry in insertion order. ValidationStateDictionary is keyed by the
// identity of bound instances instead and tells the validator which key and
// which child enumeration strategy belongs to each instance, so validation
// paths match the keys used during binding.
package modelstate
