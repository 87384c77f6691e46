package console

import (
	"testing"
	"time"
)

func TestNewSpinner(t *testing.T) {
	spinner := NewSpinner("Checking documents")
	if spinner == nil {
		t.Fatal("NewSpinner returned nil")
	}

	// must not panic whether or not stderr is a terminal
	spinner.Start()
	spinner.UpdateMessage("Checking 2/3")
	time.Sleep(10 * time.Millisecond)
	spinner.Stop()
}

func TestSpinnerDisabledWithoutColor(t *testing.T) {
	withColorMode(t, ColorNever)

	spinner := NewSpinner("Checking documents")
	if spinner.IsEnabled() {
		t.Error("spinner should be disabled when color is turned off")
	}
	spinner.Start()
	spinner.Stop()
}
