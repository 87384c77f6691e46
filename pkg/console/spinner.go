package console

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// SpinnerWrapper shows progress on stderr while documents are processed.
// It stays silent unless stderr is a styled terminal.
type SpinnerWrapper struct {
	spinner *spinner.Spinner
	enabled bool
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) *SpinnerWrapper {
	s := &SpinnerWrapper{
		enabled: isTTY() && currentColorMode() != ColorNever,
	}

	if s.enabled {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.spinner.Suffix = " " + message
		_ = s.spinner.Color("cyan") // Ignore error as fallback is fine
	}

	return s
}

// Start begins the spinner animation
func (s *SpinnerWrapper) Start() {
	if s.enabled {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation and clears its line
func (s *SpinnerWrapper) Stop() {
	if s.enabled {
		s.spinner.Stop()
	}
}

// UpdateMessage updates the spinner message
func (s *SpinnerWrapper) UpdateMessage(message string) {
	if s.enabled {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}

// IsEnabled returns whether the spinner is enabled
func (s *SpinnerWrapper) IsEnabled() bool {
	return s.enabled
}
