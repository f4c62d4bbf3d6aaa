package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOrder is returned for order requests that cannot be priced
	ErrInvalidOrder = errors.New("invalid order request")

	// ErrUnsupportedFileType is returned when an upload is neither CSV nor XLSX
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrImportParse is returned when an upload cannot be read as a spreadsheet
	ErrImportParse = errors.New("failed to parse upload")

	// ErrTicketSpaceExhausted is returned when every generated ticket number collided
	ErrTicketSpaceExhausted = errors.New("could not allocate a unique ticket number")

	// ErrInvalidCredentials is returned for a failed admin login
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAdminDisabled is returned when admin login is not configured
	ErrAdminDisabled = errors.New("admin login is not configured")
)

// RowError reports the first spreadsheet row that failed validation.
// Row is 1-based and counts the header row, so it matches what a spreadsheet shows.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func invalidOrder(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidOrder, fmt.Sprintf(format, args...))
}
