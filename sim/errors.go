package sim

import (
	"errors"
	"fmt"
	"strings"
)

// Errors reported by the value stores and the runner.
var (
	// ErrInvalidKey is returned when a value name is empty or whitespace.
	ErrInvalidKey = errors.New("invalid key")

	// ErrUnknownKey is returned when reading or setting a value that does
	// not exist.
	ErrUnknownKey = errors.New("unknown key")

	// ErrInvalidDefinition is returned when a parameter definition carries
	// an empty name or an empty [min, max] range.
	ErrInvalidDefinition = errors.New("invalid definition")

	// ErrInvalidArgument is returned for out-of-range call arguments, such
	// as a non-positive step size or a step count smaller than 1.
	ErrInvalidArgument = errors.New("invalid argument")
)

// A DuplicateWriterError is returned by the pipeline builder when two
// components declare a write to the same value name.
type DuplicateWriterError struct {
	ValueName string
	First     string
	Second    string
}

func (e DuplicateWriterError) Error() string {
	return fmt.Sprintf(
		"value %q has more than one writer: %s and %s",
		e.ValueName, e.First, e.Second)
}

// A UnitMismatchError is returned by the pipeline builder when a reader
// declares a different unit than the writer of the same value.
type UnitMismatchError struct {
	ValueName  string
	Writer     string
	WriterUnit string
	Reader     string
	ReaderUnit string
}

func (e UnitMismatchError) Error() string {
	return fmt.Sprintf(
		"value %q is written by %s as %s but read by %s as %s",
		e.ValueName, e.Writer, e.WriterUnit, e.Reader, e.ReaderUnit)
}

// A DependencyCycleError is returned by the pipeline builder when the
// write→read dependencies form a cycle. Blocked lists the components that
// could not be ordered.
type DependencyCycleError struct {
	Blocked []string
}

func (e DependencyCycleError) Error() string {
	return fmt.Sprintf(
		"dependency cycle involving components: %s",
		strings.Join(e.Blocked, ", "))
}
