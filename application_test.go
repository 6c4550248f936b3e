package showcase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"

	"github.com/interactive-solutions/go-showcase"
	"github.com/interactive-solutions/go-showcase/render/fonts"
	"github.com/interactive-solutions/go-showcase/render/layout"
	"github.com/interactive-solutions/go-showcase/render/raster"
	"github.com/interactive-solutions/go-showcase/render/vector"
)

type settingsRepository struct {
	settings []showcase.OGImageSettings
	err      error
}

func (repo *settingsRepository) GetActive(ctx context.Context) (showcase.OGImageSettings, error) {
	if repo.err != nil {
		return showcase.OGImageSettings{}, repo.err
	}

	switch len(repo.settings) {
	case 0:
		return showcase.OGImageSettings{}, showcase.SettingsNotFoundErr
	case 1:
		return repo.settings[0], nil
	default:
		return showcase.OGImageSettings{}, showcase.AmbiguousSettingsErr
	}
}

type brandRepository struct {
	brand showcase.BrandIdentity
	err   error
	calls int
}

func (repo *brandRepository) Get(ctx context.Context) (showcase.BrandIdentity, error) {
	repo.calls++
	return repo.brand, repo.err
}

type recordingTransport struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (t *recordingTransport) Send(ctx context.Context, serviceId, templateId string, params map[string]interface{}) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sent = append(t.sent, templateId)

	if t.fail {
		return "", errors.New("provider rejected the message")
	}

	return "id-" + templateId, nil
}

type deliveryLog struct {
	mu         sync.Mutex
	deliveries []showcase.Delivery
}

func (log *deliveryLog) Create(ctx context.Context, delivery *showcase.Delivery) error {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.deliveries = append([]showcase.Delivery{*delivery}, log.deliveries...)
	return nil
}

func (log *deliveryLog) Recent(ctx context.Context, limit int) ([]showcase.Delivery, error) {
	log.mu.Lock()
	defer log.mu.Unlock()

	if len(log.deliveries) < limit {
		limit = len(log.deliveries)
	}

	return log.deliveries[:limit], nil
}

type slowFonts struct{}

func (slowFonts) Load(ctx context.Context) (vector.Fonts, error) {
	time.Sleep(time.Second)
	return vector.Fonts{}, nil
}

func activeSettings() showcase.OGImageSettings {
	return showcase.OGImageSettings{
		Id:                      "settings-1",
		Title:                   "Jane Doe",
		Subtitle:                "Engineer and writer",
		Tagline:                 "janedoe.dev",
		BackgroundColor:         "#0f172a",
		BackgroundGradientStart: "#0f172a",
		BackgroundGradientEnd:   "#1e293b",
		TitleColor:              "#ffffff",
		SubtitleColor:           "#94a3b8",
		AccentColor:             "#38bdf8",
		Layout:                  showcase.LayoutCentered,
		TitleFontSize:           64,
		SubtitleFontSize:        28,
		Width:                   600,
		Height:                  315,
		ShowLogo:                true,
		ShowPattern:             true,
		PatternType:             showcase.PatternDots,
		IsActive:                true,
	}
}

func TestApplication(t *testing.T) {
	suite.Run(t, new(applicationTestSuite))
}

type applicationTestSuite struct {
	suite.Suite

	settings  *settingsRepository
	brand     *brandRepository
	transport *recordingTransport
	log       *deliveryLog
	hook      *test.Hook

	app     showcase.Application
	handler http.Handler
}

func (suite *applicationTestSuite) SetupTest() {
	suite.settings = &settingsRepository{settings: []showcase.OGImageSettings{activeSettings()}}
	suite.brand = &brandRepository{brand: showcase.BrandIdentity{Name: "JD"}}
	suite.transport = &recordingTransport{}
	suite.log = &deliveryLog{}

	suite.app = suite.newApp()
	suite.handler = suite.app.HttpHandler()
}

func (suite *applicationTestSuite) TearDownTest() {
	suite.NoError(suite.app.Shutdown(context.Background()))
}

func (suite *applicationTestSuite) newApp(options ...showcase.AppOption) showcase.Application {
	logger, hook := test.NewNullLogger()
	suite.hook = hook

	config := showcase.DefaultDispatcherConfig()
	config.ServiceId = "service_1"
	config.AdminEmail = "owner@example.com"
	config.AdminName = "Owner"
	config.BaseBackoff = time.Millisecond

	limiter := showcase.NewMemoryRateLimiter(showcase.RateLimitConfig{MaxAttempts: 3, Window: time.Minute})

	dispatcher := showcase.NewDispatcher(suite.transport,
		showcase.SetDispatchLogger(logger),
		showcase.SetDispatchConfig(config),
		showcase.SetDispatchLimiter(limiter),
		showcase.SetDispatchDeliveryRepo(suite.log),
	)

	defaults := []showcase.AppOption{
		showcase.SetLogger(logger),
		showcase.SetSettingsRepo(suite.settings),
		showcase.SetBrandRepo(suite.brand),
		showcase.SetFontSource(fonts.Embedded()),
		showcase.SetLayoutEngine(layout.New()),
		showcase.SetRasterizer(raster.New()),
		showcase.SetDispatcher(dispatcher),
		showcase.SetAdminToken("admin-secret"),
		showcase.SetSweeper(limiter, "@every 1m"),
	}

	app, err := showcase.NewApplication(append(defaults, options...)...)
	suite.Require().NoError(err)

	return app
}

func (suite *applicationTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	return rec
}

func (suite *applicationTestSuite) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return suite.do(req)
}

func decode(rec *httptest.ResponseRecorder) map[string]interface{} {
	out := map[string]interface{}{}
	json.Unmarshal(rec.Body.Bytes(), &out)

	return out
}

func (suite *applicationTestSuite) TestMissingConfiguration() {
	_, err := showcase.NewApplication()
	suite.EqualError(err, "Missing settings repository")
}

func (suite *applicationTestSuite) TestOGImage() {
	rec := suite.do(httptest.NewRequest(http.MethodGet, "/og-image?title=Hello%20world", nil))

	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("image/png", rec.Header().Get("Content-Type"))
	suite.Equal("public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	suite.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	suite.Require().NoError(err)
	suite.Equal(600, img.Bounds().Dx())
	suite.Equal(315, img.Bounds().Dy())

	suite.Equal(1, suite.brand.calls, "brand is the logo fallback")
}

func (suite *applicationTestSuite) TestOGImageSvg() {
	rec := suite.do(httptest.NewRequest(http.MethodGet, "/og-image?format=svg&subtitle=Sub%20%26%20title", nil))

	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("image/svg+xml", rec.Header().Get("Content-Type"))
	suite.Contains(rec.Body.String(), "<svg")
	suite.Contains(rec.Body.String(), "Jane Doe")
	suite.Contains(rec.Body.String(), "Sub &amp; title")
	suite.Contains(rec.Body.String(), ">JD<")
}

func (suite *applicationTestSuite) TestOGImageUnknownFormat() {
	rec := suite.do(httptest.NewRequest(http.MethodGet, "/og-image?format=gif", nil))
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *applicationTestSuite) TestOGImageWithoutSettings() {
	suite.settings.settings = nil

	rec := suite.do(httptest.NewRequest(http.MethodGet, "/og-image", nil))

	suite.Equal(http.StatusInternalServerError, rec.Code)
	suite.Equal("application/json", rec.Header().Get("Content-Type"))
	suite.Contains(decode(rec), "error")
}

func (suite *applicationTestSuite) TestOGImageAmbiguousSettings() {
	suite.settings.settings = append(suite.settings.settings, activeSettings())

	rec := suite.do(httptest.NewRequest(http.MethodGet, "/og-image", nil))

	suite.Equal(http.StatusInternalServerError, rec.Code)
	suite.Contains(decode(rec)["error"], "More than one")
}

func (suite *applicationTestSuite) TestOGImageInvalidSettings() {
	suite.settings.settings[0].TitleColor = "not-a-color"

	rec := suite.do(httptest.NewRequest(http.MethodGet, "/og-image", nil))

	suite.Equal(http.StatusInternalServerError, rec.Code)
}

func (suite *applicationTestSuite) TestBrandFailureIsIgnored() {
	suite.brand.err = errors.New("brand table missing")

	rec := suite.do(httptest.NewRequest(http.MethodGet, "/og-image", nil))

	suite.Equal(http.StatusOK, rec.Code)
	suite.NotEmpty(suite.hook.Entries)
}

func (suite *applicationTestSuite) TestBrandSkippedWhenLogoStored() {
	suite.settings.settings[0].LogoText = "JD"

	_, err := suite.app.RenderOGImage(context.Background(), showcase.CardOptions{}, showcase.FormatSVG)

	suite.Require().NoError(err)
	suite.Zero(suite.brand.calls)
}

func (suite *applicationTestSuite) TestRenderTimeout() {
	app := suite.newApp(
		showcase.SetFontSource(slowFonts{}),
		showcase.SetTimeouts(showcase.Timeouts{Fonts: 20 * time.Millisecond}),
	)
	defer app.Shutdown(context.Background())

	_, err := app.RenderOGImage(context.Background(), showcase.CardOptions{}, showcase.FormatPNG)

	suite.Require().Error(err)
	suite.Equal(context.DeadlineExceeded, errors.Cause(err))

	stage, ok := err.(*showcase.StageError)
	suite.Require().True(ok)
	suite.Equal("fonts", stage.Stage)
}

func (suite *applicationTestSuite) TestPreflight() {
	for _, path := range []string{"/og-image", "/contact", "/calculate-duration", "/admin/reply"} {
		rec := suite.do(httptest.NewRequest(http.MethodOptions, path, nil))

		suite.Equal(http.StatusOK, rec.Code, path)
		suite.Equal("ok", rec.Body.String(), path)
		suite.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"), path)
		suite.Equal("authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"), path)
	}
}

func (suite *applicationTestSuite) TestContact() {
	rec := suite.post("/contact", `{"name":"Ada","email":"Ada@Example.com","subject":"Hi","message":"Hello there"}`)

	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := decode(rec)
	suite.Equal(true, body["success"])
	suite.Equal("id-template_notification", body["messageId"])
	suite.Equal(true, body["autoReplySent"])
	suite.Equal([]string{"template_notification", "template_auto_reply"}, suite.transport.sent)
}

func (suite *applicationTestSuite) TestContactValidation() {
	suite.Equal(http.StatusBadRequest, suite.post("/contact", `{"name":"Ada","message":"Hi"}`).Code)
	suite.Equal(http.StatusBadRequest, suite.post("/contact", `{"name":"Ada","email":"nope","message":"Hi"}`).Code)
	suite.Equal(http.StatusBadRequest, suite.post("/contact", `not json`).Code)
	suite.Empty(suite.transport.sent)
}

func (suite *applicationTestSuite) TestContactRateLimited() {
	body := `{"name":"Ada","email":"ada@example.com","message":"Hello"}`

	for i := 0; i < 3; i++ {
		suite.Equal(http.StatusOK, suite.post("/contact", body).Code)
	}

	rec := suite.post("/contact", body)
	suite.Equal(http.StatusTooManyRequests, rec.Code)
	suite.Contains(decode(rec), "error")
}

func (suite *applicationTestSuite) TestContactProviderFailure() {
	suite.transport.fail = true

	rec := suite.post("/contact", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`)

	suite.Equal(http.StatusBadGateway, rec.Code)
	suite.Equal("provider rejected the message", decode(rec)["details"])
	suite.Len(suite.transport.sent, 3)
}

func (suite *applicationTestSuite) TestReplyRequiresToken() {
	body := `{"to_email":"ada@example.com","subject":"Re: Hi","message":"Thanks"}`

	suite.Equal(http.StatusUnauthorized, suite.post("/admin/reply", body).Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/reply", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer wrong")
	suite.Equal(http.StatusUnauthorized, suite.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/reply", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer admin-secret")

	rec := suite.do(req)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("id-template_reply", decode(rec)["messageId"])
}

func (suite *applicationTestSuite) TestDeliveries() {
	suite.Require().Equal(http.StatusOK, suite.post("/contact", `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Hello"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/deliveries", nil)
	suite.Equal(http.StatusUnauthorized, suite.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/deliveries", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")

	rec := suite.do(req)
	suite.Require().Equal(http.StatusOK, rec.Code)

	payload := struct {
		Data []showcase.Delivery `json:"data"`
	}{}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &payload))

	suite.Require().Len(payload.Data, 2)
	suite.Equal(showcase.OperationAutoReply, payload.Data[0].Operation)
	suite.Equal("ada@example.com", payload.Data[0].Target)
	suite.Equal(showcase.OperationNotification, payload.Data[1].Operation)
	suite.Equal("owner@example.com", payload.Data[1].Target)
}

func (suite *applicationTestSuite) TestAdminDisabledWithoutToken() {
	suite.Require().NoError(suite.app.Shutdown(context.Background()))

	suite.app = suite.newApp(showcase.SetAdminToken(""))
	suite.handler = suite.app.HttpHandler()

	req := httptest.NewRequest(http.MethodGet, "/admin/deliveries", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")

	suite.Equal(http.StatusNotFound, suite.do(req).Code)
}

func (suite *applicationTestSuite) TestCalculateDuration() {
	rec := suite.post("/calculate-duration", `{"start_date":"2024-01-01","end_date":"2024-01-31"}`)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Equal(30.0, decode(rec)["duration"])

	rec = suite.post("/calculate-duration", `{"end_date":"2024-01-31"}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal("Start date is required", decode(rec)["error"])

	rec = suite.post("/calculate-duration", `{"start_date":"someday"}`)
	suite.Equal(http.StatusInternalServerError, rec.Code)
	suite.Contains(decode(rec), "details")

	rec = suite.post("/calculate-duration", `{"start_date":"2000-01-01"}`)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Greater(decode(rec)["duration"], 8000.0)
}

func (suite *applicationTestSuite) TestHealthAndMetrics() {
	suite.Equal(http.StatusOK, suite.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)

	suite.do(httptest.NewRequest(http.MethodGet, "/og-image", nil))

	rec := suite.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "showcase_og_render_duration_seconds")
}
