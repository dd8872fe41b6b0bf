package typesystem

import "fmt"

// MismatchError reports two types that cannot be made equal. Detail names the
// innermost conflicting pair when it differs from the outer one.
type MismatchError struct {
	Expected string
	Actual   string
	Detail   string
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("expected %s but found %s", e.Expected, e.Actual)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// AmbiguousError reports a type or unit variable that nothing constrained.
type AmbiguousError struct {
	Type string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous type %s", e.Type)
}

// UnknownTypeError reports a reference to an undeclared tagged type.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %s", e.Name)
}

// DeclarationError reports an invalid tagged type declaration.
type DeclarationError struct {
	Name    string
	Message string
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("type %s: %s", e.Name, e.Message)
}
