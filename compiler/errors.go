package compiler

import (
	"errors"
	"fmt"

	"cn1css/cascade"
)

// CompileError locates a fatal compilation failure.
type CompileError struct {
	File     string
	Selector string
	Property string
	Err      error
}

func (e *CompileError) Error() string {
	switch {
	case e.Selector == "":
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	case e.Property == "":
		return fmt.Sprintf("%s: %s: %v", e.File, e.Selector, e.Err)
	}
	return fmt.Sprintf("%s: %s { %s }: %v", e.File, e.Selector, e.Property, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// locate wraps err with its location, declaration failures reported by the
// cascade keep their own selector and property.
func locate(file, selector, property string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}
	var ae *cascade.ApplyError
	if errors.As(err, &ae) {
		return &CompileError{File: file, Selector: ae.Selector, Property: ae.Property, Err: ae.Err}
	}
	return &CompileError{File: file, Selector: selector, Property: property, Err: err}
}
