// Package binder turns request values into typed Go models.
//
// A Factory resolves a Binder for each model type by asking its providers in
// order; the first provider returning a binder wins. Binders for struct
// fields, collection elements and map entries are created up front and
// cached, and recursive types resolve through placeholders, so a binder tree
// is built once per type and reused across requests.
//
// Binding is recursive and driven by a Context. Nested scopes carry the
// model name ("order.lines[0].sku"), the metadata and the value provider of
// the current node, and restore the parent on exit. Every Bind returns a
// Result that is either not attempted, failed or successful with a model.
// Per-field problems are recorded in the Context's model state; only
// configuration problems and recursion limits are returned as errors.
//
// # Usage
//
//	pb := binder.New(binder.DefaultOptions())
//
//	ac := pb.NewActionContext(r)
//	vp, err := valueprovider.FromRequest(r, pb.Options().RequestOptions())
//	if err != nil {
//	    return err
//	}
//	res, err := pb.Bind(r.Context(), ac, vp, metadata.ParameterFor[CreateOrder]("order"))
//	if err != nil {
//	    return err
//	}
//	if !ac.ModelState.IsValid() {
//	    // report ac.ModelState.ValidationErrors()
//	}
//	order := res.Interface().(CreateOrder)
//
// # Request keys
//
// Collections bind from explicit index tokens ("lines.index=a&lines[a].sku=x"),
// from repeated or comma separated values ("ids=1,2&ids=3") or from
// zero-based indices ("lines[0].sku"), which stop at the first gap. Maps bind
// from "tags[0].key"/"tags[0].value" pairs or from the short form
// "tags[red]=1". Struct fields honor the bind, default, binder and source
// tags described in package metadata.
//
// # Custom binders
//
// A type implementing Binder can be attached to a model type with
// metadata.WithBinderType, or registered by name with Factory.RegisterBinder
// and selected with a binder:"name" tag.
package binder
