package showcase

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/interactive-solutions/go-showcase/internal"
)

const (
	maxBodySize = 64 << 10

	imageCacheControl = "public, max-age=31536000, immutable"
	corsAllowHeaders  = "authorization, x-client-info, apikey, content-type"
)

type httpHandler struct {
	app *application
}

// HttpHandler builds the public router. Every route answers CORS preflight
// requests.
func (a *application) HttpHandler() http.Handler {
	h := &httpHandler{app: a}

	r := mux.NewRouter()
	r.Use(cors)

	r.HandleFunc("/og-image", h.OGImage).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/contact", h.Contact).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/calculate-duration", h.CalculateDuration).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("/reply", h.Reply).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/deliveries", h.Deliveries).Methods(http.MethodGet, http.MethodOptions)

	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if r.Method == http.MethodOptions {
			w.Write([]byte("ok"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *httpHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if h.app.adminToken == "" {
			writeError(w, http.StatusNotFound, "Not found", "")
			return
		}

		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")

		if token == auth || subtle.ConstantTimeCompare([]byte(token), []byte(h.app.adminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "Invalid or missing bearer token", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to convert to json", 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	payload := map[string]string{"error": message}
	if details != "" {
		payload["details"] = details
	}

	writeJSON(w, status, payload)
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

func (h *httpHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *httpHandler) OGImage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	format := FormatPNG
	switch query.Get("format") {
	case "", "png":
	case "svg":
		format = FormatSVG
	default:
		writeError(w, http.StatusBadRequest, "Unsupported format, png or svg expected", "")
		return
	}

	opts := CardOptions{
		Title:    query.Get("title"),
		Subtitle: query.Get("subtitle"),
		LogoText: query.Get("logo"),
	}

	image, err := h.app.RenderOGImage(r.Context(), opts, format)
	if err != nil {
		h.app.logger.
			WithField("title", opts.Title).
			WithError(err).
			Error("failed to render og image")

		writeError(w, http.StatusInternalServerError, renderErrorMessage(err), "")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", imageCacheControl)
	w.Write(image)
}

func renderErrorMessage(err error) string {
	switch errors.Cause(err) {
	case SettingsNotFoundErr:
		return "No active OG image settings found"
	case AmbiguousSettingsErr:
		return "More than one active OG image settings row found"
	}

	if stage, ok := err.(*StageError); ok {
		return "Failed to generate image at " + stage.Stage + " stage"
	}

	return "Failed to generate image"
}

func (h *httpHandler) Contact(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", "")
		return
	}

	if err := internal.Validate(internal.ContactSchema, data); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	body := &internal.ContactRequest{}
	if err := json.Unmarshal(data, body); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse incoming json", "")
		return
	}

	if !IsValidEmail(SanitizeEmail(body.Email)) {
		writeError(w, http.StatusBadRequest, "Invalid email address", "")
		return
	}

	dispatcher := h.app.dispatcher
	config := dispatcher.Config()

	result := dispatcher.SendNotification(r.Context(), EmailParams{
		FromEmail: body.Email,
		FromName:  body.Name,
		Subject:   body.Subject,
		Message:   body.Message,
	})

	if !h.respondFailure(w, result) {
		return
	}

	autoReply := dispatcher.SendAutoReply(r.Context(), EmailParams{
		ToEmail:   body.Email,
		ToName:    body.Name,
		FromEmail: config.AdminEmail,
		FromName:  config.AdminName,
		ReplyTo:   config.AdminEmail,
		Subject:   body.Subject,
		Message:   body.Message,
	})

	if !autoReply.Success {
		h.app.logger.
			WithField("rateLimited", autoReply.RateLimited).
			WithError(autoReply.Error).
			Warn("auto reply was not sent")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"messageId":     result.MessageId,
		"autoReplySent": autoReply.Success,
	})
}

func (h *httpHandler) Reply(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", "")
		return
	}

	if err := internal.Validate(internal.ReplySchema, data); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	body := &internal.ReplyRequest{}
	if err := json.Unmarshal(data, body); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse incoming json", "")
		return
	}

	if !IsValidEmail(SanitizeEmail(body.ToEmail)) {
		writeError(w, http.StatusBadRequest, "Invalid email address", "")
		return
	}

	config := h.app.dispatcher.Config()

	result := h.app.dispatcher.SendReply(r.Context(), EmailParams{
		ToEmail:   body.ToEmail,
		ToName:    body.ToName,
		FromEmail: config.AdminEmail,
		FromName:  config.AdminName,
		ReplyTo:   config.AdminEmail,
		Subject:   body.Subject,
		Message:   body.Message,
	})

	if !h.respondFailure(w, result) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"messageId": result.MessageId,
	})
}

// respondFailure writes the error response for an unsuccessful result and
// reports whether the caller may continue.
func (h *httpHandler) respondFailure(w http.ResponseWriter, result SendResult) bool {
	switch {
	case result.Success:
		return true

	case result.RateLimited:
		writeError(w, http.StatusTooManyRequests, RateLimitedErr.Error(), "")

	default:
		details := ""
		if result.Error != nil {
			details = result.Error.Error()
		}

		writeError(w, http.StatusBadGateway, "Failed to send message", details)
	}

	return false
}

func (h *httpHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	repo := h.app.dispatcher.deliveries
	if repo == nil {
		writeError(w, http.StatusNotFound, "Delivery log is not enabled", "")
		return
	}

	deliveries, err := repo.Recent(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve deliveries", "")
		return
	}

	payload := struct {
		Data []Delivery `json:"data"`
	}{deliveries}

	writeJSON(w, http.StatusOK, payload)
}

func (h *httpHandler) CalculateDuration(w http.ResponseWriter, r *http.Request) {
	body := &internal.DurationRequest{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(body); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate duration", err.Error())
		return
	}

	if body.StartDate == "" {
		writeError(w, http.StatusBadRequest, "Start date is required", "")
		return
	}

	start, err := ParseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate duration", err.Error())
		return
	}

	end := time.Now()
	if body.EndDate != "" {
		if end, err = ParseDate(body.EndDate); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to calculate duration", err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"duration": CalculateDuration(start, end)})
}
