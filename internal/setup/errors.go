package setup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyInitialized is returned when Initialize is called after a super
// admin already exists. Handlers should translate this into an HTTP 400
// response; it is a client-actionable rejection, not a server fault.
var ErrAlreadyInitialized = errors.New("system already initialized")

// FieldError describes a single validation failure on the initialize request.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError carries the full list of field violations for a rejected
// request. It never implies any state change happened.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))
}
