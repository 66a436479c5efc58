// Package validator provides composable validation rules and a registry that
// drives them from validate struct tags.
//
// Rules are small values pairing a Check function with translation-friendly
// error metadata. Apply evaluates rules and aggregates failures into
// ValidationErrors, which implements error and keeps one entry per failed
// field check.
//
// # Usage
//
//	err := validator.Apply(
//	    validator.RequiredSlice("items", items),
//	    validator.ValidEmail("email", email),
//	    validator.MinNum("age", age, 18),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    // iterate over field-level messages or translate them
//	}
//
// # Struct Tags
//
// The model validator reads `validate` tags and resolves each entry through a
// Registry:
//
//	type Signup struct {
//	    Email string `validate:"required,email"`
//	    Plan  string `validate:"oneof=free pro"`
//	    Seats int    `validate:"min=1,max=50"`
//	}
//
// Built-in rules are required, min, max, len, oneof, email, uuid and regex.
// Register adds application rules.
package validator
