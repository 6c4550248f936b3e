package showcase

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	NoEmailTransportErr = errors.New("No email transport configured")
	RateLimitedErr      = errors.New("Too many requests, please try again later")
)

type SendResult struct {
	Success     bool
	MessageId   string
	Error       error
	Duration    time.Duration
	Attempts    int
	RateLimited bool
}

type DispatcherConfig struct {
	ServiceId string

	NotificationTemplateId string
	AutoReplyTemplateId    string
	ReplyTemplateId        string

	// AdminEmail receives contact form notifications.
	AdminEmail string
	AdminName  string

	MaxRetries  int
	BaseBackoff time.Duration
	SendTimeout time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		NotificationTemplateId: "template_notification",
		AutoReplyTemplateId:    "template_auto_reply",
		ReplyTemplateId:        "template_reply",
		MaxRetries:             2,
		BaseBackoff:            time.Second,
		SendTimeout:            10 * time.Second,
	}
}

type DispatcherOption func(d *Dispatcher)

func SetDispatchLogger(logger logrus.FieldLogger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func SetDispatchConfig(config DispatcherConfig) DispatcherOption {
	return func(d *Dispatcher) {
		d.config = config
	}
}

func SetDispatchLimiter(limiter RateLimiter) DispatcherOption {
	return func(d *Dispatcher) {
		d.limiter = limiter
	}
}

func SetDispatchDeliveryRepo(repo DeliveryRepository) DispatcherOption {
	return func(d *Dispatcher) {
		d.deliveries = repo
	}
}

func SetDispatchMetrics(metrics *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// SetDispatchThrottle caps the rate of outbound provider calls across all
// dispatches.
func SetDispatchThrottle(limiter *rate.Limiter) DispatcherOption {
	return func(d *Dispatcher) {
		d.throttle = limiter
	}
}

// SetDispatchSleep replaces the backoff sleep, mostly for tests.
func SetDispatchSleep(sleep func(ctx context.Context, d time.Duration) error) DispatcherOption {
	return func(d *Dispatcher) {
		d.sleep = sleep
	}
}

type Dispatcher struct {
	logger logrus.FieldLogger
	config DispatcherConfig

	transport  EmailTransport
	limiter    RateLimiter
	deliveries DeliveryRepository
	metrics    *Metrics
	throttle   *rate.Limiter

	sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(transport EmailTransport, options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger:    logrus.New(),
		config:    DefaultDispatcherConfig(),
		transport: transport,
		sleep:     sleepContext,
	}

	for _, option := range options {
		option(d)
	}

	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Dispatcher) Config() DispatcherConfig {
	return d.config
}

// SendWithRetry calls the transport up to maxRetries+1 times, waiting
// 2^attempt * BaseBackoff between tries. It never returns an error directly,
// every failure ends up in the result.
func (d *Dispatcher) SendWithRetry(ctx context.Context, serviceId, templateId string, params map[string]interface{}, maxRetries int) SendResult {
	start := time.Now()
	result := SendResult{}

	if d.transport == nil {
		result.Error = NoEmailTransportErr
		return result
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result.Attempts++

		id, err := d.attempt(ctx, serviceId, templateId, params)
		if err == nil {
			result.Success = true
			result.MessageId = id
			result.Error = nil
			break
		}

		result.Error = err

		d.logger.
			WithField("serviceId", serviceId).
			WithField("templateId", templateId).
			WithField("attempt", result.Attempts).
			WithError(err).
			Warn("email send attempt failed")

		if attempt == maxRetries {
			break
		}

		backoff := d.config.BaseBackoff * time.Duration(1<<uint(attempt))
		if err := d.sleep(ctx, backoff); err != nil {
			result.Error = errors.Wrap(result.Error, err.Error())
			break
		}
	}

	result.Duration = time.Since(start)

	return result
}

func (d *Dispatcher) attempt(ctx context.Context, serviceId, templateId string, params map[string]interface{}) (string, error) {
	if d.throttle != nil {
		if err := d.throttle.Wait(ctx); err != nil {
			return "", errors.Wrap(err, "Outbound throttle")
		}
	}

	if d.config.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.SendTimeout)
		defer cancel()
	}

	id, err := d.transport.Send(ctx, serviceId, templateId, params)
	if err != nil {
		return "", err
	}

	return id, nil
}

// allow consults the limiter. A failing limiter backend lets the request
// through so an outage cannot block all mail.
func (d *Dispatcher) allow(ctx context.Context, key string) bool {
	if d.limiter == nil {
		return true
	}

	ok, err := d.limiter.Check(ctx, key)
	if err != nil {
		d.logger.
			WithField("key", key).
			WithError(err).
			Warn("rate limiter unavailable, allowing request")

		return true
	}

	return ok
}

func (d *Dispatcher) dispatch(ctx context.Context, op Operation, key, templateId string, params EmailParams) SendResult {
	target := params.ToEmail
	values := params.TemplateParams()

	var result SendResult

	if d.allow(ctx, key) {
		result = d.SendWithRetry(ctx, d.config.ServiceId, templateId, values, d.config.MaxRetries)
	} else {
		result = SendResult{RateLimited: true, Error: RateLimitedErr}
	}

	d.metrics.observeSend(op, result)
	d.record(ctx, newDelivery(op, d.config.ServiceId, templateId, target, values, result))

	return result
}

func (d *Dispatcher) record(ctx context.Context, delivery *Delivery) {
	if d.deliveries == nil {
		return
	}

	if err := d.deliveries.Create(ctx, delivery); err != nil {
		d.logger.
			WithField("delivery", delivery.Uuid).
			WithError(err).
			Error("failed to record delivery")
	}
}

// SendNotification forwards a contact form message to the site owner. It is
// limited per sender address.
func (d *Dispatcher) SendNotification(ctx context.Context, params EmailParams) SendResult {
	params = SanitizeParams(params)
	key := string(OperationNotification) + ":" + params.FromEmail

	if params.ToEmail == "" {
		params.ToEmail = SanitizeEmail(d.config.AdminEmail)
	}

	if params.ToName == "" && d.config.AdminName != "" {
		params.ToName = SanitizeText(d.config.AdminName)
	}

	if params.ReplyTo == "" {
		params.ReplyTo = params.FromEmail
	}

	return d.dispatch(ctx, OperationNotification, key, d.config.NotificationTemplateId, params)
}

// SendAutoReply confirms receipt to the person who wrote in.
func (d *Dispatcher) SendAutoReply(ctx context.Context, params EmailParams) SendResult {
	params = SanitizeParams(params)
	key := string(OperationAutoReply) + ":" + params.ToEmail

	return d.dispatch(ctx, OperationAutoReply, key, d.config.AutoReplyTemplateId, params)
}

// SendReply delivers a reply written by the site owner.
func (d *Dispatcher) SendReply(ctx context.Context, params EmailParams) SendResult {
	params = SanitizeParams(params)
	key := string(OperationReply) + ":" + params.ToEmail

	return d.dispatch(ctx, OperationReply, key, d.config.ReplyTemplateId, params)
}
