package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/doctypetool/doctype/internal/mapper"
	"github.com/doctypetool/doctype/pkg/console"
	"github.com/doctypetool/doctype/pkg/constants"
)

//go:embed schemas/config_schema.json
var configSchema string

const configSchemaURL = "https://doctypetool.github.io/doctype/config_schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var schemaDoc any
	if err := json.Unmarshal([]byte(configSchema), &schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to parse config schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add config schema resource: %w", err)
	}
	return compiler.Compile(configSchemaURL)
})

// Schema returns the embedded JSON schema for configuration files.
func Schema() string {
	return configSchema
}

// Problem is one schema violation located in the config file.
type Problem struct {
	Pointer string
	Line    int
	Column  int
	Message string
	Hint    string
}

// SchemaError reports every schema violation found in a config file.
type SchemaError struct {
	File     string
	Problems []Problem
	source   []byte
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	for _, p := range e.Problems {
		b.WriteString(console.FormatDiagnostic(console.Diagnostic{
			Position: console.Position{File: e.File, Line: p.Line, Column: p.Column},
			Severity: "error",
			Message:  p.Message,
			Context:  console.ContextLines(e.source, p.Line, 1),
			Hint:     p.Hint,
		}))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ValidateFile checks a config file against the configuration schema.
func ValidateFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ValidateSource(path, source)
}

// ValidateSource checks config file contents against the configuration
// schema. file is only used in messages.
func ValidateSource(file string, source []byte) error {
	var doc any
	if err := yaml.Unmarshal(source, &doc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", file, err)
	}
	if doc == nil {
		// empty file
		doc = map[string]any{}
	}

	// Round-trip through JSON so the validator sees JSON types only
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config file %s to JSON: %w", file, err)
	}
	var instance any
	if err := json.Unmarshal(jsonData, &instance); err != nil {
		return fmt.Errorf("failed to convert config file %s to JSON: %w", file, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return err
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	var valErr *jsonschema.ValidationError
	if !errors.As(err, &valErr) {
		return fmt.Errorf("config file %s failed schema validation: %w", file, err)
	}

	schemaErr := &SchemaError{File: file, source: source}
	for _, leaf := range leafErrors(valErr) {
		schemaErr.Problems = append(schemaErr.Problems, problemsFor(leaf, source)...)
	}
	sort.SliceStable(schemaErr.Problems, func(i, j int) bool {
		a, b := schemaErr.Problems[i], schemaErr.Problems[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return schemaErr
}

// leafErrors returns the most specific errors below err.
func leafErrors(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		leaves = append(leaves, leafErrors(cause)...)
	}
	return leaves
}

func problemsFor(valErr *jsonschema.ValidationError, source []byte) []Problem {
	errorKind := "unknown"
	if valErr.ErrorKind != nil {
		if keywordPath := valErr.ErrorKind.KeywordPath(); len(keywordPath) > 0 {
			errorKind = keywordPath[len(keywordPath)-1]
		}
	}

	// additionalProperties and required name properties of the object at
	// InstanceLocation; each gets its own problem
	var properties []string
	switch k := valErr.ErrorKind.(type) {
	case *kind.AdditionalProperties:
		properties = k.Properties
	case *kind.Required:
		properties = k.Missing
	default:
		if n := len(valErr.InstanceLocation); n > 0 {
			properties = []string{valErr.InstanceLocation[n-1]}
		} else {
			properties = []string{""}
		}
	}

	var problems []Problem
	for _, property := range properties {
		meta := mapper.ErrorMeta{Kind: errorKind, Property: property}
		span, err := mapper.Locate(source, valErr.InstanceLocation, meta)
		if err != nil {
			span = mapper.Span{Line: 1, Column: 1}
		}
		problems = append(problems, Problem{
			Pointer: mapper.EncodePointer(valErr.InstanceLocation),
			Line:    span.Line,
			Column:  span.Column,
			Message: formatValidationMessage(valErr, meta),
			Hint:    validationHint(meta),
		})
	}
	return problems
}

var printer = message.NewPrinter(language.English)

func formatValidationMessage(valErr *jsonschema.ValidationError, meta mapper.ErrorMeta) string {
	location := strings.Join(valErr.InstanceLocation, ".")
	detail := ""
	if valErr.ErrorKind != nil {
		detail = valErr.ErrorKind.LocalizedString(printer)
	}

	switch meta.Kind {
	case "type":
		return fmt.Sprintf("type mismatch at '%s': %s", location, detail)
	case "required":
		return fmt.Sprintf("missing required property '%s'", meta.Property)
	case "additionalProperties":
		return fmt.Sprintf("unexpected property '%s'", meta.Property)
	case "enum":
		return fmt.Sprintf("value not allowed at '%s': %s", location, detail)
	default:
		if location == "" {
			return detail
		}
		return fmt.Sprintf("invalid value at '%s': %s", location, detail)
	}
}

func validationHint(meta mapper.ErrorMeta) string {
	switch meta.Kind {
	case "type":
		return "Check the data type - ensure strings are quoted, booleans are true or false, etc."
	case "required":
		return fmt.Sprintf("Add the required property '%s' to this object", meta.Property)
	case "additionalProperties":
		return fmt.Sprintf("Remove the property '%s' or check for typos in property names", meta.Property)
	case "enum":
		return "Use one of the allowed values defined in the schema"
	default:
		return fmt.Sprintf("Run '%s config schema' to see the accepted keys and values", constants.CLIName)
	}
}
