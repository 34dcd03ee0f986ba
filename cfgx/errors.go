package cfgx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotPointerToStruct is returned when Parse is not given a pointer to a struct.
	ErrNotPointerToStruct = errors.New("config must be a pointer to a struct")
)

// MultiError holds multiple errors that occurred during parsing.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}

	errMsgs := make([]string, len(m.Errors))
	for i, err := range m.Errors {
		errMsgs[i] = err.Error()
	}

	return fmt.Sprintf("%d error(s) occurred:\n- %s",
		len(m.Errors), strings.Join(errMsgs, "\n- "))
}

// Unwrap lets errors.Is and errors.As see the individual errors.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}
