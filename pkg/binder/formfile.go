package binder

import (
	"context"
	"mime/multipart"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/modelstate"
)

var (
	fileHeaderType      = reflect.TypeFor[*multipart.FileHeader]()
	fileHeaderSliceType = reflect.TypeFor[[]*multipart.FileHeader]()
)

func isFormFileType(t reflect.Type) bool {
	return t == fileHeaderType || t == fileHeaderSliceType
}

// formFileBinder binds uploaded files posted under the model name.
type formFileBinder struct{}

func (formFileBinder) Bind(ctx context.Context, bc *Context) (Result, error) {
	if bc.Files == nil {
		return NotAttempted(), nil
	}
	name := bc.ModelName
	if name == "" {
		name = bc.FieldName
	}
	files, err := bc.Files.Files(ctx, name)
	if err != nil {
		return Result{}, err
	}
	if len(files) == 0 {
		return NotAttempted(), nil
	}

	var model reflect.Value
	if bc.ModelMetadata.ModelType == fileHeaderSliceType {
		model = reflect.ValueOf(files)
	} else {
		model = reflect.ValueOf(files[0])
	}

	bc.ValidationState.Add(model, &modelstate.ValidationStateEntry{
		Key:                bc.ModelName,
		SuppressValidation: true,
	})
	bc.ModelState.SetModelValue(bc.ModelName, nil, "")
	return Success(model), nil
}
