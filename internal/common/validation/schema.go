// internal/common/validation/schema.go
package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed application.schema.json
var applicationSchemaJSON []byte

// Error codes attached to every ValidationError.
const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidType          = "INVALID_TYPE"
	CodeMinLengthViolation   = "MIN_LENGTH_VIOLATION"
	CodeInvalidFormat        = "INVALID_FORMAT"
	CodeInvalidEnumValue     = "INVALID_ENUM_VALUE"
	CodeInvalidValue         = "INVALID_VALUE"
	CodeExtraField           = "EXTRA_FIELD"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeSchemaViolation      = "SCHEMA_VIOLATION"
)

// RootField is reported for errors that concern the document as a whole.
const RootField = "(root)"

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Contract is a compiled JSON Schema plus the metadata the form needs
// (required set, per-field messages and defaults). It is safe for concurrent use.
type Contract struct {
	raw      []byte
	schema   *gojsonschema.Schema
	fields   []string
	required map[string]bool
	messages map[string]string
	defaults map[string]interface{}
}

type schemaDocument struct {
	Required   []string `json:"required"`
	Properties map[string]struct {
		ErrorMessage string      `json:"errorMessage"`
		Default      interface{} `json:"default"`
	} `json:"properties"`
}

// Compile parses and compiles a schema document.
func Compile(raw []byte) (*Contract, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var doc schemaDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema metadata: %w", err)
	}

	c := &Contract{
		raw:      raw,
		schema:   schema,
		required: make(map[string]bool, len(doc.Required)),
		messages: make(map[string]string, len(doc.Properties)),
		defaults: make(map[string]interface{}),
	}
	for _, name := range doc.Required {
		c.required[name] = true
	}
	for name, prop := range doc.Properties {
		c.fields = append(c.fields, name)
		if prop.ErrorMessage != "" {
			c.messages[name] = prop.ErrorMessage
		}
		if prop.Default != nil {
			c.defaults[name] = prop.Default
		}
	}
	sort.Strings(c.fields)

	return c, nil
}

var (
	applicationOnce     sync.Once
	applicationContract *Contract
)

// Application returns the contract for an application submission. Client and
// server both validate through this value.
func Application() *Contract {
	applicationOnce.Do(func() {
		c, err := Compile(applicationSchemaJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded application schema: %v", err))
		}
		applicationContract = c
	})
	return applicationContract
}

// Raw returns the schema document exactly as embedded.
func (c *Contract) Raw() []byte {
	out := make([]byte, len(c.raw))
	copy(out, c.raw)
	return out
}

// Fields returns every declared property name, sorted.
func (c *Contract) Fields() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

// Declares reports whether field is a property of the schema.
func (c *Contract) Declares(field string) bool {
	i := sort.SearchStrings(c.fields, field)
	return i < len(c.fields) && c.fields[i] == field
}

func (c *Contract) IsRequired(field string) bool {
	return c.required[field]
}

func (c *Contract) Default(field string) (interface{}, bool) {
	v, ok := c.defaults[field]
	return v, ok
}

// Validate checks a Go value (usually map[string]interface{}) against the whole schema.
func (c *Contract) Validate(doc interface{}) *ValidationResult {
	result, err := c.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return invalidDocument(err)
	}
	return c.convert(result)
}

// ValidateJSON checks raw JSON bytes against the whole schema. Malformed JSON is
// reported as a single INVALID_JSON error on the root.
func (c *Contract) ValidateJSON(body []byte) *ValidationResult {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return invalidDocument(err)
	}
	return c.convert(result)
}

// ValidateFields validates doc against the schema and keeps only the errors that
// belong to the given top-level fields. With no fields the result is always valid.
func (c *Contract) ValidateFields(doc interface{}, fields ...string) *ValidationResult {
	if len(fields) == 0 {
		return &ValidationResult{Valid: true}
	}

	wanted := make(map[string]bool, len(fields))
	for _, f := range fields {
		wanted[f] = true
	}

	full := c.Validate(doc)
	filtered := []ValidationError{}
	for _, e := range full.Errors {
		if wanted[topLevel(e.Field)] {
			filtered = append(filtered, e)
		}
	}

	return &ValidationResult{
		Valid:  len(filtered) == 0,
		Errors: filtered,
	}
}

func (c *Contract) convert(result *gojsonschema.Result) *ValidationResult {
	errors := []ValidationError{}
	for _, re := range result.Errors() {
		errors = append(errors, c.toValidationError(re))
	}
	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errors,
	}
}

func (c *Contract) toValidationError(re gojsonschema.ResultError) ValidationError {
	field := re.Field()
	if prop, ok := re.Details()["property"].(string); ok && prop != "" {
		switch re.Type() {
		case "required", "additional_property_not_allowed":
			field = prop
		}
	}

	code := codeFor(re.Type())
	if code == CodeExtraField {
		return ValidationError{Field: field, Message: "field not allowed in schema", Code: code}
	}

	message := re.Description()
	if custom, ok := c.messages[topLevel(field)]; ok {
		message = custom
	}

	return ValidationError{Field: field, Message: message, Code: code}
}

func codeFor(errType string) string {
	switch errType {
	case "required":
		return CodeRequiredFieldMissing
	case "invalid_type":
		return CodeInvalidType
	case "string_gte":
		return CodeMinLengthViolation
	case "format":
		return CodeInvalidFormat
	case "enum":
		return CodeInvalidEnumValue
	case "const":
		return CodeInvalidValue
	case "additional_property_not_allowed":
		return CodeExtraField
	default:
		return CodeSchemaViolation
	}
}

func invalidDocument(err error) *ValidationResult {
	return &ValidationResult{
		Valid: false,
		Errors: []ValidationError{{
			Field:   RootField,
			Message: fmt.Sprintf("request body is not valid JSON: %v", err),
			Code:    CodeInvalidJSON,
		}},
	}
}

// topLevel maps "documents.0" to "documents".
func topLevel(field string) string {
	if i := strings.IndexByte(field, '.'); i > 0 {
		return field[:i]
	}
	return field
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// FieldErrors keeps the first message reported for each top-level field.
func (vr *ValidationResult) FieldErrors() map[string]string {
	out := make(map[string]string, len(vr.Errors))
	for _, err := range vr.Errors {
		key := topLevel(err.Field)
		if _, seen := out[key]; !seen {
			out[key] = err.Message
		}
	}
	return out
}
