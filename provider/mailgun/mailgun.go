package mailgun

import (
	"context"

	"github.com/mailgun/mailgun-go/v3"
	"github.com/pkg/errors"

	"github.com/interactive-solutions/go-showcase"
)

type MailgunOption func(t *mailgunTransport) error

func SetFrom(from string) MailgunOption {
	return func(e *mailgunTransport) error {
		e.from = from
		return nil
	}
}

func SetReplyTo(replyTo string) MailgunOption {
	return func(e *mailgunTransport) error {
		e.replyTo = replyTo
		return nil
	}
}

type mailgunTransport struct {
	mg        mailgun.Mailgun
	templates showcase.MailTemplateRepository

	from    string
	replyTo string
}

// NewMailgunTransport sends through mailgun using templates stored locally,
// since mailgun does not resolve the template ids used by the dispatcher.
func NewMailgunTransport(mailgunClient mailgun.Mailgun, templates showcase.MailTemplateRepository, options ...MailgunOption) (showcase.EmailTransport, error) {
	t := &mailgunTransport{
		mg:        mailgunClient,
		templates: templates,
	}

	for _, option := range options {
		if err := option(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *mailgunTransport) Send(ctx context.Context, serviceId, templateId string, params map[string]interface{}) (string, error) {
	tpl, err := t.templates.Get(ctx, templateId)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to load template %s", templateId)
	}

	rendered, err := showcase.RenderMailTemplate(tpl, params)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to render template %s", templateId)
	}

	msg := t.mg.NewMessage(t.from, rendered.Subject, rendered.TextBody, showcase.Recipient(params))
	msg.SetHtml(rendered.HtmlBody)

	tags := []string{templateId}
	if serviceId != "" {
		tags = append(tags, serviceId)
	}

	if err := msg.AddTag(tags...); err != nil {
		return "", errors.Wrap(err, "Failed to add tags")
	}

	if replyTo := showcase.StringParam(params, "reply_to"); replyTo != "" {
		msg.SetReplyTo(replyTo)
	} else if t.replyTo != "" {
		msg.SetReplyTo(t.replyTo)
	}

	_, id, err := t.mg.Send(ctx, msg)
	if err != nil {
		return "", errors.Wrap(err, "Failed to send message")
	}

	return id, nil
}
