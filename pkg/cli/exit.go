package cli

import (
	"errors"

	"github.com/doctypetool/doctype/pkg/config"
	"github.com/doctypetool/doctype/pkg/console"
	"github.com/doctypetool/doctype/pkg/doctype"
)

// Process exit codes
const (
	ExitOK      = 0
	ExitFailure = 1 // fatal diagnostic or I/O failure
	ExitUsage   = 2 // conflicting options, bad flags or an invalid config file
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

func failure(err error) error {
	return &ExitError{Code: ExitFailure, Err: err}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var configErr *doctype.ConfigError
	var schemaErr *config.SchemaError
	if errors.As(err, &configErr) || errors.As(err, &schemaErr) {
		return ExitUsage
	}
	return ExitFailure
}

// FormatError renders err for the console. Config file errors already carry
// their own located formatting.
func FormatError(err error) string {
	var schemaErr *config.SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Error()
	}
	return console.FormatErrorMessage(err.Error())
}
