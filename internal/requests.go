package internal

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ReplyRequest struct {
	ToEmail string `json:"to_email"`
	ToName  string `json:"to_name"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type DurationRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

var (
	ContactSchema = mustSchema(`{
		"type": "object",
		"required": ["name", "email", "message"],
		"properties": {
			"name":    {"type": "string", "minLength": 1, "maxLength": 200},
			"email":   {"type": "string", "minLength": 3, "maxLength": 320},
			"subject": {"type": "string", "maxLength": 300},
			"message": {"type": "string", "minLength": 1, "maxLength": 10000}
		}
	}`)

	ReplySchema = mustSchema(`{
		"type": "object",
		"required": ["to_email", "subject", "message"],
		"properties": {
			"to_email": {"type": "string", "minLength": 3, "maxLength": 320},
			"to_name":  {"type": "string", "maxLength": 200},
			"subject":  {"type": "string", "minLength": 1, "maxLength": 300},
			"message":  {"type": "string", "minLength": 1, "maxLength": 20000}
		}
	}`)
)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(err)
	}

	return schema
}

// Validate checks a raw json body against schema and joins every violation
// into one error.
func Validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.Wrap(err, "Failed to parse incoming json")
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		violations[i] = desc.String()
	}

	return errors.New(strings.Join(violations, "; "))
}
