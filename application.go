package showcase

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/interactive-solutions/go-showcase/render/vector"
)

const UserAgent = "InteractiveSolutions/GoShowcase-1.0"

type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatSVG ImageFormat = "svg"
)

func (f ImageFormat) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}

	return "image/png"
}

type Application interface {
	HttpHandler() http.Handler
	RenderOGImage(ctx context.Context, opts CardOptions, format ImageFormat) ([]byte, error)
	Dispatcher() *Dispatcher
	Shutdown(ctx context.Context) error
}

// Timeouts bound each external step of a render. A zero value disables the
// bound for that step.
type Timeouts struct {
	Settings time.Duration
	Brand    time.Duration
	Fonts    time.Duration
	Render   time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Settings: 5 * time.Second,
		Brand:    2 * time.Second,
		Fonts:    10 * time.Second,
		Render:   15 * time.Second,
	}
}

// Sweeper is implemented by limiters that keep idle keys in memory.
type Sweeper interface {
	Sweep() int
}

type AppOption func(a *application)

func SetLogger(logger logrus.FieldLogger) AppOption {
	return func(a *application) {
		a.logger = logger
	}
}

func SetSettingsRepo(repo SettingsRepository) AppOption {
	return func(a *application) {
		a.settingsRepo = repo
	}
}

func SetBrandRepo(repo BrandRepository) AppOption {
	return func(a *application) {
		a.brandRepo = repo
	}
}

func SetFontSource(source FontSource) AppOption {
	return func(a *application) {
		a.fontSource = source
	}
}

func SetLayoutEngine(engine LayoutEngine) AppOption {
	return func(a *application) {
		a.layoutEngine = engine
	}
}

func SetRasterizer(rasterizer Rasterizer) AppOption {
	return func(a *application) {
		a.rasterizer = rasterizer
	}
}

func SetDispatcher(dispatcher *Dispatcher) AppOption {
	return func(a *application) {
		a.dispatcher = dispatcher
	}
}

func SetTimeouts(timeouts Timeouts) AppOption {
	return func(a *application) {
		a.timeouts = timeouts
	}
}

// SetRegistry sets where collectors are registered and what /metrics serves.
func SetRegistry(registry *prometheus.Registry) AppOption {
	return func(a *application) {
		a.registry = registry
	}
}

func SetMetrics(metrics *Metrics) AppOption {
	return func(a *application) {
		a.metrics = metrics
	}
}

// SetAdminToken enables the admin endpoints for requests carrying the token
// as a bearer credential. Without a token those endpoints are disabled.
func SetAdminToken(token string) AppOption {
	return func(a *application) {
		a.adminToken = token
	}
}

// SetSweeper schedules sweeper with a cron spec such as "@every 10m".
func SetSweeper(sweeper Sweeper, spec string) AppOption {
	return func(a *application) {
		a.sweeper = sweeper
		a.sweepSpec = spec
	}
}

type application struct {
	logger logrus.FieldLogger

	settingsRepo SettingsRepository
	brandRepo    BrandRepository

	fontSource   FontSource
	layoutEngine LayoutEngine
	rasterizer   Rasterizer

	dispatcher *Dispatcher

	timeouts Timeouts

	registry *prometheus.Registry
	metrics  *Metrics

	adminToken string

	sweeper   Sweeper
	sweepSpec string
	cron      *cron.Cron
}

func NewApplication(options ...AppOption) (Application, error) {
	app := &application{
		logger:   logrus.New(),
		timeouts: DefaultTimeouts(),
	}

	for _, option := range options {
		option(app)
	}

	if err := app.ensureUsableConfiguration(); err != nil {
		return app, err
	}

	if app.registry == nil {
		app.registry = prometheus.NewRegistry()
	}

	if app.metrics == nil {
		metrics, err := NewMetrics(app.registry)
		if err != nil {
			return app, err
		}

		app.metrics = metrics
	}

	if app.sweeper != nil {
		app.cron = cron.New()

		if _, err := app.cron.AddFunc(app.sweepSpec, app.sweep); err != nil {
			return app, errors.Wrapf(err, "Invalid sweep schedule %q", app.sweepSpec)
		}

		app.cron.Start()
	}

	return app, nil
}

func (a *application) ensureUsableConfiguration() error {
	if a.settingsRepo == nil {
		return errors.New("Missing settings repository")
	}

	if a.fontSource == nil {
		return errors.New("Missing font source")
	}

	if a.layoutEngine == nil {
		return errors.New("Missing layout engine")
	}

	if a.rasterizer == nil {
		return errors.New("Missing rasterizer")
	}

	if a.dispatcher == nil {
		return errors.New("Missing email dispatcher")
	}

	return nil
}

func (a *application) Dispatcher() *Dispatcher {
	return a.dispatcher
}

func (a *application) Shutdown(ctx context.Context) error {
	if a.cron == nil {
		return nil
	}

	select {
	case <-a.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *application) sweep() {
	removed := a.sweeper.Sweep()
	a.metrics.swept(removed)

	if removed > 0 {
		a.logger.WithField("removed", removed).Debug("swept idle rate limiter keys")
	}
}

// within runs fn under a timeout and returns as soon as the deadline passes,
// even if fn does not observe its context.
func within[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}

	done := make(chan outcome, 1)

	go func() {
		value, err := fn(ctx)
		done <- outcome{value, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()

	case out := <-done:
		return out.value, out.err
	}
}

// StageError reports which render step failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Cause() error {
	return e.Err
}

func (a *application) fail(stage string, err error) error {
	a.metrics.renderFailed(stage)

	return &StageError{Stage: stage, Err: err}
}

// RenderOGImage runs the card pipeline: settings, optional brand fallback,
// fonts, tree, layout and rasterization. Nothing is retried.
func (a *application) RenderOGImage(ctx context.Context, opts CardOptions, format ImageFormat) ([]byte, error) {
	start := time.Now()

	settings, err := within(ctx, a.timeouts.Settings, a.settingsRepo.GetActive)
	if err != nil {
		return nil, a.fail("settings", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, a.fail("settings", errors.Wrap(err, "Invalid og image settings"))
	}

	if settings.ShowLogo && opts.LogoText == "" && settings.LogoText == "" && opts.BrandName == "" {
		opts.BrandName = a.brandName(ctx)
	}

	fonts, err := within(ctx, a.timeouts.Fonts, a.fontSource.Load)
	if err != nil {
		return nil, a.fail("fonts", err)
	}

	root := BuildCard(settings, opts)

	image, err := within(ctx, a.timeouts.Render, func(ctx context.Context) ([]byte, error) {
		return a.draw(ctx, root, fonts, settings, format)
	})
	if err != nil {
		return nil, a.fail("render", err)
	}

	a.metrics.observeRender(time.Since(start))

	return image, nil
}

func (a *application) draw(ctx context.Context, root *Node, fonts vector.Fonts, settings OGImageSettings, format ImageFormat) ([]byte, error) {
	doc, err := a.layoutEngine.Layout(ctx, root, fonts, settings.Width, settings.Height)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to lay out card")
	}

	if format == FormatSVG {
		buf := &bytes.Buffer{}
		if err := doc.EncodeSVG(buf); err != nil {
			return nil, errors.Wrap(err, "Failed to encode svg")
		}

		return buf.Bytes(), nil
	}

	png, err := a.rasterizer.Rasterize(ctx, doc, settings.Width)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to rasterize card")
	}

	return png, nil
}

// brandName is best effort, a failure only means the card has no logo.
func (a *application) brandName(ctx context.Context) string {
	if a.brandRepo == nil {
		return ""
	}

	brand, err := within(ctx, a.timeouts.Brand, a.brandRepo.Get)
	if err != nil {
		if errors.Cause(err) != BrandNotFoundErr {
			a.logger.WithError(err).Warn("failed to load brand identity for logo fallback")
		}

		return ""
	}

	return brand.Name
}
