package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/interactive-solutions/go-showcase"
)

const emailjsApi = "https://api.emailjs.com/api/v1.0/email/send"

type EmailjsOption func(e *emailjs)

func SetEndpoint(endpoint string) EmailjsOption {
	return func(e *emailjs) {
		e.endpoint = endpoint
	}
}

func SetAccessToken(token string) EmailjsOption {
	return func(e *emailjs) {
		e.accessToken = token
	}
}

// SetHttpClient replaces the default client. Retries belong to the
// dispatcher, so the default client never retries on its own.
func SetHttpClient(client *retryablehttp.Client) EmailjsOption {
	return func(e *emailjs) {
		e.client = client
	}
}

type emailjs struct {
	client *retryablehttp.Client

	endpoint    string
	publicKey   string
	accessToken string
}

type sendRequest struct {
	ServiceId      string                 `json:"service_id"`
	TemplateId     string                 `json:"template_id"`
	UserId         string                 `json:"user_id"`
	AccessToken    string                 `json:"accessToken,omitempty"`
	TemplateParams map[string]interface{} `json:"template_params"`
}

func NewEmailjsTransport(publicKey string, options ...EmailjsOption) showcase.EmailTransport {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	e := &emailjs{
		client:    client,
		endpoint:  emailjsApi,
		publicKey: publicKey,
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Send posts one templated message. EmailJS does not return an identifier so
// a local one is generated for correlation.
func (e *emailjs) Send(ctx context.Context, serviceId, templateId string, params map[string]interface{}) (string, error) {
	body, err := json.Marshal(sendRequest{
		ServiceId:      serviceId,
		TemplateId:     templateId,
		UserId:         e.publicKey,
		AccessToken:    e.accessToken,
		TemplateParams: params,
	})
	if err != nil {
		return "", errors.Wrap(err, "Failed to encode emailjs request")
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", showcase.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 || resp.StatusCode <= 199 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", errors.Errorf("Unexpected response code %d received from emailjs: %s", resp.StatusCode, bytes.TrimSpace(text))
	}

	return uuid.NewString(), nil
}
