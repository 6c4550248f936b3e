package showcase

import (
	"context"
	"net/mail"
)

// EmailTransport delivers one templated message through a provider and
// returns the provider's message id.
type EmailTransport interface {
	Send(ctx context.Context, serviceId, templateId string, params map[string]interface{}) (string, error)
}

type EmailParams struct {
	ToEmail   string `json:"to_email"`
	ToName    string `json:"to_name,omitempty"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	ReplyTo   string `json:"reply_to,omitempty"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`

	Variables map[string]interface{} `json:"variables,omitempty"`
}

// TemplateParams flattens p into the variable map handed to providers. Named
// fields take precedence over Variables with the same key.
func (p EmailParams) TemplateParams() map[string]interface{} {
	params := make(map[string]interface{}, len(p.Variables)+7)

	for k, v := range p.Variables {
		params[k] = v
	}

	params["to_email"] = p.ToEmail
	params["from_email"] = p.FromEmail
	params["from_name"] = p.FromName
	params["subject"] = p.Subject
	params["message"] = p.Message

	if p.ToName != "" {
		params["to_name"] = p.ToName
	}

	if p.ReplyTo != "" {
		params["reply_to"] = p.ReplyTo
	}

	return params
}

// StringParam reads key from a provider parameter map, returning "" when it is
// missing or not a string.
func StringParam(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)
	return s
}

// Recipient formats the to address carried in params, including the display
// name when one is set.
func Recipient(params map[string]interface{}) string {
	email := StringParam(params, "to_email")
	if name := StringParam(params, "to_name"); name != "" {
		return (&mail.Address{Name: name, Address: email}).String()
	}

	return email
}
