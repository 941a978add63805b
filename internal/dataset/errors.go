package dataset

import (
	"fmt"
	"strings"
)

// ValidationError reports required columns missing from a source file.
type ValidationError struct {
	Source  string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}
