package geohash

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is matched by every *DomainError.
	ErrOutOfRange = errors.New("geohash: coordinate out of range")
	// ErrInvalidCharacter is matched by every *DecodeError.
	ErrInvalidCharacter = errors.New("geohash: invalid character")
)

// DomainError reports a coordinate outside its legal bounds.
type DomainError struct {
	Field    string
	Value    float64
	Min, Max float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("geohash: %s %v outside [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrOutOfRange
}

// DecodeError reports a hash character outside the base32 alphabet.
type DecodeError struct {
	Hash     string
	Position int
	Char     byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("geohash: invalid character %q at position %d in %q", e.Char, e.Position, e.Hash)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidCharacter
}
