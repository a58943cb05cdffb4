package object

import (
	"errors"
	"fmt"
)

var (
	ErrDecode            = errors.New("malformed object encoding")
	ErrCorruptObject     = errors.New("corrupt object")
	ErrObjectNotFound    = errors.New("object not found")
	ErrInvalidIdentifier = errors.New("invalid object identifier")
	ErrTypeMismatch      = errors.New("object type mismatch")
)

// DecodeError reports canonical bytes that do not parse as the declared type.
type DecodeError struct {
	Type   ObjectType
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s at offset %d", e.Type, e.Reason, e.Offset)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// CorruptObjectError reports a loose object whose envelope cannot be parsed.
type CorruptObjectError struct {
	Hash   Hash
	Reason string
	Err    error
}

func (e *CorruptObjectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("object %s: %s: %s: %v", e.Hash, ErrCorruptObject, e.Reason, e.Err)
	}
	return fmt.Sprintf("object %s: %s: %s", e.Hash, ErrCorruptObject, e.Reason)
}

func (e *CorruptObjectError) Unwrap() error { return e.Err }

func (e *CorruptObjectError) Is(target error) bool { return target == ErrCorruptObject }

// ObjectNotFoundError reports an object missing from loose storage and from
// the fallback lookup. Err holds the fallback failure, if one was attempted.
type ObjectNotFoundError struct {
	Hash Hash
	Err  error
}

func (e *ObjectNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("object %s: %s: %v", e.Hash, ErrObjectNotFound, e.Err)
	}
	return fmt.Sprintf("object %s: %s", e.Hash, ErrObjectNotFound)
}

func (e *ObjectNotFoundError) Unwrap() error { return e.Err }

func (e *ObjectNotFoundError) Is(target error) bool { return target == ErrObjectNotFound }

// InvalidIdentifierError reports a string that is not a 40-character hex id.
type InvalidIdentifierError struct {
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidIdentifier, e.Value)
}

func (e *InvalidIdentifierError) Is(target error) bool { return target == ErrInvalidIdentifier }

// TypeMismatchError is returned by the typed read helpers.
type TypeMismatchError struct {
	Hash Hash
	Got  ObjectType
	Want ObjectType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("object %s: type mismatch: got %q, want %q", e.Hash, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }
