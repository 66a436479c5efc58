// Package validation validates bound model graphs into model state.
//
// ObjectValidator walks a model the way it was bound: keys, metadata and
// child strategies recorded in a modelstate.ValidationStateDictionary
// override the defaults, so errors land on the same keys the binder used
// ("lines[abc].sku" for explicitly indexed collections, "tags[red]" for
// short-form dictionaries). Each node is checked with its validate tag
// rules and, when the model implements Validatable, its own Validate method.
//
//	v := validation.NewObjectValidator()
//	if err := v.ValidateWithMetadata(ctx, ms, vs, "order", order, meta); err != nil {
//	    return err
//	}
//	if !ms.IsValid() {
//	    // report ms.ValidationErrors()
//	}
//
// Keys already invalid after binding are not validated again. Instances
// marked with SuppressValidation and everything below them are marked
// skipped. Once the model state error cap is reached the remaining entries
// are skipped as well.
package validation
