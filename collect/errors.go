package collect

import "fmt"

// FieldError is returned by value handlers. It names the schema field the
// handler was extracting.
type FieldError struct {
	Field string
	Msg   string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("collector '%s': %s: %v", e.Field, e.Msg, e.Err)
	}
	return fmt.Sprintf("collector '%s': %s", e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// SchemaViolationError reports a field that matched fewer times than its
// minimum pass count.
type SchemaViolationError struct {
	Field string
	Count int
	Min   int
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("the number of collector '%s' passes is less than the minimum number of passes (%d < %d)",
		e.Field, e.Count, e.Min)
}
