// Package schemas validates structured generation output against JSON Schema.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// RecordSchema is the schema every JSON-mode record must satisfy.
//
//go:embed record.schema.json
var RecordSchema string

// DatasetSchema is the shape of a dataset line written in either reply format.
//
//go:embed dataset.schema.json
var DatasetSchema string

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError is returned when the schema or the document cannot be loaded.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateRecord checks a JSON document against RecordSchema.
func ValidateRecord(jsonContent string) error {
	return validate("record.schema.json", gojsonschema.NewStringLoader(RecordSchema), jsonContent)
}

// ValidateDatasetLine checks one dataset line against DatasetSchema.
func ValidateDatasetLine(jsonContent string) error {
	return validate("dataset.schema.json", gojsonschema.NewStringLoader(DatasetSchema), jsonContent)
}

func validate(name string, schemaLoader gojsonschema.JSONLoader, jsonContent string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &SchemaLoadError{
			Path:    name,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
