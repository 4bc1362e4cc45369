package journal

import (
	"fmt"
	"strings"

	"github.com/fxjournal/journal-api/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

// FieldError is a validation failure tied to a single payload field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field failure from one validation pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

var requiredTradeFields = []string{
	"date", "session", "pair", "trendMain", "trendSecondary",
	"tfBlock", "tfEntry", "tradeType", "result",
}

var (
	createSchema *gojsonschema.Schema
	updateSchema *gojsonschema.Schema
)

func init() {
	var err error
	if createSchema, err = compileTradeSchema(requiredTradeFields); err != nil {
		panic(fmt.Sprintf("journal: compile create schema: %v", err))
	}
	if updateSchema, err = compileTradeSchema(nil); err != nil {
		panic(fmt.Sprintf("journal: compile update schema: %v", err))
	}
}

func enumOf(values []string) map[string]interface{} {
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return map[string]interface{}{"type": "string", "enum": vals}
}

// compileTradeSchema builds the trade payload schema from the closed value
// sets. The create and update variants differ only in the required list.
func compileTradeSchema(required []string) (*gojsonschema.Schema, error) {
	doc := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"date":           map[string]interface{}{"type": "string", "format": "date-time"},
			"session":        enumOf(types.Sessions),
			"pair":           enumOf(types.Pairs),
			"trendMain":      enumOf(types.Trends),
			"trendSecondary": enumOf(types.Trends),
			"tfBlock":        enumOf(types.HigherTimeframes),
			"tfEntry":        enumOf(types.LowerTimeframes),
			"tradeType":      enumOf(types.TradeTypes),
			"result":         enumOf(types.Results),
			"rr":             map[string]interface{}{"type": "string"},
			"notes":          map[string]interface{}{"type": "string", "maxLength": 1000},
			"screenshotUrl":  map[string]interface{}{"type": "string"},
			"screenshotId":   map[string]interface{}{"type": "string"},
			// legacy read-compat names, normalized after validation
			"imageUrl": map[string]interface{}{"type": "string"},
			"image": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"secureUrl": map[string]interface{}{"type": "string"},
					"publicId":  map[string]interface{}{"type": "string"},
				},
			},
		},
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
}

// validatePayload runs raw JSON through the schema and maps every violation
// to a field-specific message.
func validatePayload(schema *gojsonschema.Schema, payload []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs ValidationErrors
	for _, e := range result.Errors() {
		field := e.Field()
		if field == "(root)" {
			if prop, ok := e.Details()["property"].(string); ok {
				field = prop
			}
		}
		errs = append(errs, FieldError{Field: field, Message: e.Description()})
	}
	return errs
}

// ValidateCreate checks a full creation payload: every required field present
// and every enum-valued field a member of its closed set.
func ValidateCreate(payload []byte) error {
	return validatePayload(createSchema, payload)
}

// ValidateUpdate checks a partial update payload: any subset of editable
// fields, each still bound to its closed set.
func ValidateUpdate(payload []byte) error {
	return validatePayload(updateSchema, payload)
}
