package cluster

import (
	"fmt"
	"strings"
)

// InsufficientDataError reports fewer users than requested clusters.
type InsufficientDataError struct {
	Users int
	K     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("cluster: %d users cannot support k=%d", e.Users, e.K)
}

// DegenerateInputError reports zero-variance feature columns, which
// standardization cannot scale.
type DegenerateInputError struct {
	Columns []string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("cluster: zero-variance feature columns: %s", strings.Join(e.Columns, ", "))
}
