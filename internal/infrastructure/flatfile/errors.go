package flatfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("flat file missing header row")

	// ErrEmptyFile is returned when the file has no content at all
	ErrEmptyFile = errors.New("flat file is empty")
)

// MissingColumnsError reports required header columns absent from a file
type MissingColumnsError struct {
	File    string
	Columns []string
}

// Error implements the error interface
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns in %s: %s", e.File, strings.Join(e.Columns, ", "))
}
