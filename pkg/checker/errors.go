package checker

import (
	"errors"
	"fmt"
)

// ErrUnknownSchema is returned when a request names a schema the registry
// does not hold.
var ErrUnknownSchema = errors.New("unknown schema")

// SchemaError is a schema file that failed to load.
type SchemaError struct {
	Name  string
	Path  string
	Cause error
}

func (e *SchemaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema %q (%s): %v", e.Name, e.Path, e.Cause)
	}
	return fmt.Sprintf("schema %q: %v", e.Name, e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}
