package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctypetool/doctype/pkg/config"
	"github.com/doctypetool/doctype/pkg/doctype"
)

func TestExitCode(t *testing.T) {
	configErr := doctype.OverridePolicy{ForcedPublicID: "p", OmitPublicID: true}.Validate()
	require.Error(t, configErr)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: ExitOK},
		{name: "plain error", err: errors.New("boom"), want: ExitFailure},
		{name: "failure", err: failure(errors.New("read failed")), want: ExitFailure},
		{name: "usage", err: usageError(errors.New("bad flag")), want: ExitUsage},
		{name: "conflicting options", err: configErr, want: ExitUsage},
		{name: "wrapped conflicting options", err: fmt.Errorf("settings: %w", configErr), want: ExitUsage},
		{name: "config file schema", err: &config.SchemaError{File: "x.yaml"}, want: ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitErrorUnwraps(t *testing.T) {
	inner := errors.New("inner")
	err := usageError(inner)
	assert.Equal(t, "inner", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestFormatError(t *testing.T) {
	noColor(t)

	assert.Contains(t, FormatError(errors.New("boom")), "boom")

	schemaErr := config.ValidateSource("c.yaml", []byte("colour: never\n"))
	require.Error(t, schemaErr)
	assert.Equal(t, schemaErr.Error(), FormatError(schemaErr))
}
