package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/go-pg/pg"
	"github.com/mailgun/mailgun-go/v3"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/interactive-solutions/go-showcase"
	"github.com/interactive-solutions/go-showcase/internal/config"
	"github.com/interactive-solutions/go-showcase/provider/aws"
	"github.com/interactive-solutions/go-showcase/provider/emailjs"
	mailgunprovider "github.com/interactive-solutions/go-showcase/provider/mailgun"
	"github.com/interactive-solutions/go-showcase/render/fonts"
	"github.com/interactive-solutions/go-showcase/render/layout"
	"github.com/interactive-solutions/go-showcase/render/raster"
	"github.com/interactive-solutions/go-showcase/storage/go-pg"
	"github.com/interactive-solutions/go-showcase/storage/redis"
)

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()

	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

func newTransport(cfg *config.Config, templates showcase.MailTemplateRepository) (showcase.EmailTransport, error) {
	switch cfg.Email.Provider {
	case config.ProviderMailgun:
		mg := mailgun.NewMailgun(cfg.Mailgun.Domain, cfg.Mailgun.ApiKey)

		return mailgunprovider.NewMailgunTransport(mg, templates,
			mailgunprovider.SetFrom(cfg.Email.From),
			mailgunprovider.SetReplyTo(cfg.Email.AdminEmail),
		)

	case config.ProviderSes:
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Ses.Region)})
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create aws session")
		}

		return provider.NewSesTransport(sess, templates, cfg.Email.From), nil

	default:
		options := []emailjs.EmailjsOption{emailjs.SetAccessToken(cfg.Email.AccessToken)}
		if cfg.Email.Endpoint != "" {
			options = append(options, emailjs.SetEndpoint(cfg.Email.Endpoint))
		}

		return emailjs.NewEmailjsTransport(cfg.Email.PublicKey, options...), nil
	}
}

func run(logger *logrus.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbOptions, err := pg.ParseURL(cfg.Database.Url)
	if err != nil {
		return errors.Wrap(err, "Invalid database url")
	}

	db := pg.Connect(dbOptions)
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := showcase.NewMetrics(registry)
	if err != nil {
		return err
	}

	limiterConfig := showcase.RateLimitConfig{
		MaxAttempts: cfg.RateLimit.MaxAttempts,
		Window:      cfg.RateLimit.Window(),
	}

	var (
		limiter    showcase.RateLimiter
		appOptions []showcase.AppOption
	)

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Wrap(err, "Failed to reach redis")
		}

		limiter = redisstore.NewRateLimiter(client, limiterConfig)
	} else {
		memory := showcase.NewMemoryRateLimiter(limiterConfig)
		limiter = memory
		appOptions = append(appOptions, showcase.SetSweeper(memory, cfg.RateLimit.Sweep))
	}

	transport, err := newTransport(cfg, gopg.NewMailTemplateRepository(db))
	if err != nil {
		return err
	}

	dispatchOptions := []showcase.DispatcherOption{
		showcase.SetDispatchLogger(logger.WithField("component", "dispatcher")),
		showcase.SetDispatchLimiter(limiter),
		showcase.SetDispatchDeliveryRepo(gopg.NewDeliveryRepository(db)),
		showcase.SetDispatchMetrics(metrics),
		showcase.SetDispatchConfig(showcase.DispatcherConfig{
			ServiceId:              cfg.Email.ServiceId,
			NotificationTemplateId: cfg.Email.Templates.Notification,
			AutoReplyTemplateId:    cfg.Email.Templates.AutoReply,
			ReplyTemplateId:        cfg.Email.Templates.Reply,
			AdminEmail:             cfg.Email.AdminEmail,
			AdminName:              cfg.Email.AdminName,
			MaxRetries:             cfg.Email.MaxRetries,
			BaseBackoff:            cfg.Email.BaseBackoff,
			SendTimeout:            cfg.Email.SendTimeout,
		}),
	}

	if cfg.Email.RatePerSec > 0 {
		burst := int(cfg.Email.RatePerSec)
		if burst < 1 {
			burst = 1
		}

		dispatchOptions = append(dispatchOptions, showcase.SetDispatchThrottle(rate.NewLimiter(rate.Limit(cfg.Email.RatePerSec), burst)))
	}

	fontSource := fonts.Embedded()
	if cfg.Fonts.RegularUrl != "" {
		fontSource = fonts.NewHttpSource(cfg.Fonts.RegularUrl, cfg.Fonts.BoldUrl)
	}

	appOptions = append(appOptions,
		showcase.SetLogger(logger),
		showcase.SetSettingsRepo(gopg.NewSettingsRepository(db)),
		showcase.SetBrandRepo(gopg.NewBrandRepository(db)),
		showcase.SetFontSource(fontSource),
		showcase.SetLayoutEngine(layout.New()),
		showcase.SetRasterizer(raster.New()),
		showcase.SetDispatcher(showcase.NewDispatcher(transport, dispatchOptions...)),
		showcase.SetRegistry(registry),
		showcase.SetMetrics(metrics),
		showcase.SetAdminToken(cfg.Admin.Token),
		showcase.SetTimeouts(showcase.Timeouts{
			Settings: cfg.Render.SettingsTimeout,
			Brand:    cfg.Render.BrandTimeout,
			Fonts:    cfg.Render.FontsTimeout,
			Render:   cfg.Render.RenderTimeout,
		}),
	)

	app, err := showcase.NewApplication(appOptions...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Http.Addr,
		Handler:      app.HttpHandler(),
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
	}

	errs := make(chan error, 1)

	go func() {
		logger.WithField("addr", cfg.Http.Addr).Info("http server listening")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "Http server failed")
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to shut down http server")
	}

	return app.Shutdown(shutdownCtx)
}

func main() {
	configPath := flag.String("config", "", "path to a yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := newLogger(cfg.Log)

	if err := run(logger, cfg); err != nil {
		logger.WithError(err).Fatal("showcase stopped")
	}
}
