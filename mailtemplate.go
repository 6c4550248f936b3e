package showcase

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/pkg/errors"
)

// MailTemplate is a locally stored message template for providers that do
// not host templates themselves.
type MailTemplate struct {
	TemplateId string `sql:",pk" json:"id"`

	Enabled     bool   `sql:",notnull" json:"enabled"`
	Description string `sql:",notnull" json:"description"`

	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HtmlBody string `json:"html_body"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RenderedMail struct {
	Subject  string
	TextBody string
	HtmlBody string
}

var TemplateDisabledErr = errors.New("The template is disabled")

// RenderMailTemplate executes every part of tpl against params. Subject and
// text body are rendered as plain text, the html body is escaped.
func RenderMailTemplate(tpl MailTemplate, params map[string]interface{}) (RenderedMail, error) {
	if !tpl.Enabled {
		return RenderedMail{}, TemplateDisabledErr
	}

	var (
		out RenderedMail
		err error
	)

	if out.Subject, err = renderText(tpl.Subject, params); err != nil {
		return out, errors.Wrap(err, "failed to parse subject")
	}

	if out.TextBody, err = renderText(tpl.TextBody, params); err != nil {
		return out, errors.Wrap(err, "failed to parse text body")
	}

	tmpl, err := htmltemplate.New("").Parse(tpl.HtmlBody)
	if err != nil {
		return out, errors.Wrap(err, "failed to parse html body")
	}

	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, params); err != nil {
		return out, errors.Wrap(err, "failed to render html body")
	}

	out.HtmlBody = buf.String()

	return out, nil
}

func renderText(body string, params map[string]interface{}) (string, error) {
	tmpl, err := texttemplate.New("").Parse(body)
	if err != nil {
		return "", err
	}

	buf := &bytes.Buffer{}

	if err := tmpl.Execute(buf, params); err != nil {
		return "", err
	}

	return buf.String(), nil
}
