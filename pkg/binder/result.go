package binder

import "reflect"

type resultState uint8

const (
	stateNotAttempted resultState = iota
	stateFailed
	stateSuccess
)

// Result is the outcome of a binder. The zero value is NotAttempted.
type Result struct {
	state resultState
	model reflect.Value
}

// NotAttempted reports that the binder found nothing to bind.
func NotAttempted() Result {
	return Result{state: stateNotAttempted}
}

// Failed reports that binding was attempted and did not produce a model.
// The reason is recorded in model state.
func Failed() Result {
	return Result{state: stateFailed}
}

// Success carries the bound model. An invalid or nil model is a valid
// successful result.
func Success(model reflect.Value) Result {
	return Result{state: stateSuccess, model: model}
}

func (r Result) IsModelSet() bool     { return r.state == stateSuccess }
func (r Result) IsNotAttempted() bool { return r.state == stateNotAttempted }
func (r Result) IsFailed() bool       { return r.state == stateFailed }

// Model returns the bound model. It is invalid unless IsModelSet.
func (r Result) Model() reflect.Value {
	return r.model
}

// Interface returns the bound model as any, or nil.
func (r Result) Interface() any {
	if !r.model.IsValid() || !r.model.CanInterface() {
		return nil
	}
	return r.model.Interface()
}

func (r Result) String() string {
	switch r.state {
	case stateFailed:
		return "Failed"
	case stateSuccess:
		return "Success"
	}
	return "NotAttempted"
}
