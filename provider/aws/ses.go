package provider

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/pkg/errors"

	"github.com/interactive-solutions/go-showcase"
)

type sesTransport struct {
	ses       sesiface.SESAPI
	templates showcase.MailTemplateRepository

	from    string
	charset string
}

func NewSesTransport(sess *session.Session, templates showcase.MailTemplateRepository, from string) showcase.EmailTransport {
	return NewSesTransportWithClient(ses.New(sess), templates, from)
}

func NewSesTransportWithClient(client sesiface.SESAPI, templates showcase.MailTemplateRepository, from string) showcase.EmailTransport {
	return &sesTransport{
		ses:       client,
		templates: templates,
		from:      from,
		charset:   "UTF-8",
	}
}

func (transport *sesTransport) content(data string) *ses.Content {
	return &ses.Content{
		Charset: aws.String(transport.charset),
		Data:    aws.String(data),
	}
}

// Send renders the stored template and sends it through SES. A non-empty
// serviceId names the SES configuration set to send with.
func (transport *sesTransport) Send(ctx context.Context, serviceId, templateId string, params map[string]interface{}) (string, error) {
	tpl, err := transport.templates.Get(ctx, templateId)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to load template %s", templateId)
	}

	rendered, err := showcase.RenderMailTemplate(tpl, params)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to render template %s", templateId)
	}

	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{
				aws.String(showcase.Recipient(params)),
			},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Html: transport.content(rendered.HtmlBody),
				Text: transport.content(rendered.TextBody),
			},
			Subject: transport.content(rendered.Subject),
		},

		Source: aws.String(transport.from),
	}

	if replyTo := showcase.StringParam(params, "reply_to"); replyTo != "" {
		input.ReplyToAddresses = []*string{aws.String(replyTo)}
	}

	if serviceId != "" {
		input.ConfigurationSetName = aws.String(serviceId)
	}

	out, err := transport.ses.SendEmailWithContext(ctx, input)
	if err != nil {
		return "", errors.Wrap(err, "Failed to send email through ses")
	}

	return aws.StringValue(out.MessageId), nil
}
