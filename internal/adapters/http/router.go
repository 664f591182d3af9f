package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kellemar/text-analyzer/internal/core/domain"
	"github.com/kellemar/text-analyzer/internal/core/ports"
	"github.com/kellemar/text-analyzer/internal/export"
	"github.com/kellemar/text-analyzer/internal/observability/metrics"
)

const (
	accessTokenCookie = "access_token"
	serviceName       = "text-analyzer"

	// Headroom over the document limit for the other multipart fields.
	multipartSlack = 1 << 20
)

type Router struct {
	analyzer ports.ArticleAnalysisService
	auth     ports.AuthService
	exporter *export.Service
	migrate  func(ctx context.Context) error
	metrics  *metrics.HTTPServerMetrics
	logger   *slog.Logger

	maxUploadBytes int64
	corsOrigins    []string
	rateLimitRPS   int
	rateLimitBurst int
	maxInFlight    int
}

type RouterOptions struct {
	Analyzer ports.ArticleAnalysisService
	Auth     ports.AuthService
	Exporter *export.Service
	Migrate  func(ctx context.Context) error
	Metrics  *metrics.HTTPServerMetrics
	Logger   *slog.Logger

	MaxUploadBytes int64
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
}

func NewRouter(opts RouterOptions) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		analyzer:       opts.Analyzer,
		auth:           opts.Auth,
		exporter:       opts.Exporter,
		migrate:        opts.Migrate,
		metrics:        opts.Metrics,
		logger:         logger,
		maxUploadBytes: opts.MaxUploadBytes,
		corsOrigins:    opts.CORSOrigins,
		rateLimitRPS:   opts.RateLimitRPS,
		rateLimitBurst: opts.RateLimitBurst,
		maxInFlight:    opts.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/signup", rt.signup)
	mux.HandleFunc("/login", rt.login)
	mux.Handle("/v1/analyze", rt.requireSession(http.HandlerFunc(rt.analyze)))
	mux.Handle("/v1/articles/export", rt.requireSession(http.HandlerFunc(rt.exportArticles)))
	mux.Handle("/v1/admin/migrate", rt.requireSession(http.HandlerFunc(rt.adminMigrate)))
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.maxInFlight, time.Second)
	handler = rateLimitMiddleware(handler, float64(rt.rateLimitRPS), rt.rateLimitBurst)
	handler = corsMiddleware(handler, rt.corsOrigins)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) signup(w http.ResponseWriter, r *http.Request) {
	rt.handleCredentials(w, r, "signup successful", rt.auth.Signup)
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	rt.handleCredentials(w, r, "login successful", rt.auth.Login)
}

type credentialsFunc func(ctx context.Context, creds domain.Credentials, meta domain.SessionMeta) (*domain.User, *domain.IssuedSession, error)

func (rt *Router) handleCredentials(w http.ResponseWriter, r *http.Request, message string, fn credentialsFunc) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "decode credentials", errors.New("invalid json")))
		return
	}

	user, issued, err := fn(r.Context(), domain.Credentials{Email: req.Email, Password: req.Password}, sessionMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    issued.AccessToken,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"user": map[string]any{
			"id":         user.ID,
			"email":      user.Email,
			"created_at": user.CreatedAt.Format(time.RFC3339),
		},
		"session": map[string]any{
			"access_token": issued.AccessToken,
			"expires_at":   issued.ExpiresAt.Format(time.RFC3339),
		},
	})
}

func sessionMeta(r *http.Request) domain.SessionMeta {
	remoteAddr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteAddr = host
	}
	return domain.SessionMeta{
		UserAgent: r.UserAgent(),
		IPAddress: remoteAddr,
	}
}

func (rt *Router) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if cookie, err := r.Cookie(accessTokenCookie); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			writeError(w, domain.WrapError(domain.ErrUnauthorized, "authenticate request", errors.New("missing access token")))
			return
		}
		if _, err := rt.auth.Authenticate(r.Context(), token); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes+multipartSlack)

	req, err := rt.parseAnalysisRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	result, err := rt.analyzer.Analyze(r.Context(), req)
	if err != nil {
		rt.recordAnalysis("error", time.Since(start))
		writeError(w, err)
		return
	}
	rt.recordAnalysis("ok", time.Since(start))

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) parseAnalysisRequest(r *http.Request) (domain.AnalysisRequest, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "multipart/form-data" {
		return rt.parseMultipartAnalysis(r)
	}

	var body struct {
		Text    string                 `json:"text"`
		Options domain.AnalysisOptions `json:"options"`
	}
	body.Options = domain.DefaultAnalysisOptions()
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.AnalysisRequest{}, domain.WrapError(domain.ErrInvalidInput, "read request body", errors.New("request body too large"))
		}
		return domain.AnalysisRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode analysis request", errors.New("invalid json"))
	}
	return domain.AnalysisRequest{Text: body.Text, Options: body.Options}, nil
}

func (rt *Router) parseMultipartAnalysis(r *http.Request) (domain.AnalysisRequest, error) {
	if err := r.ParseMultipartForm(rt.maxUploadBytes); err != nil {
		return domain.AnalysisRequest{}, domain.WrapError(domain.ErrInvalidInput, "parse multipart form", errors.New("invalid or oversized multipart body"))
	}

	req := domain.AnalysisRequest{
		Text:    r.FormValue("text"),
		Options: domain.DefaultAnalysisOptions(),
	}
	if v := r.FormValue("include_entities"); v != "" {
		req.Options.IncludeEntities = parseBool(v, true)
	}
	if v := r.FormValue("include_summary"); v != "" {
		req.Options.IncludeSummary = parseBool(v, true)
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, rt.maxUploadBytes+1))
		if readErr != nil {
			return domain.AnalysisRequest{}, domain.WrapError(domain.ErrInvalidInput, "read uploaded file", readErr)
		}
		req.File = data
		req.Filename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		return domain.AnalysisRequest{}, domain.WrapError(domain.ErrInvalidInput, "read multipart file", errors.New("malformed file field"))
	}

	return req, nil
}

func parseBool(v string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func (rt *Router) exportArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse export limit", errors.New("limit must be a non-negative integer")))
			return
		}
		limit = parsed
	}

	data, err := rt.exporter.ExportArticlesXLSX(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="articles.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) adminMigrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.migrate == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "migration endpoint disabled"})
		return
	}
	if err := rt.migrate(r.Context()); err != nil {
		rt.logger.Error("schema migration failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":    "migration failed",
			"category": "request",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) recordAnalysis(status string, elapsed time.Duration) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAnalysis(serviceName, status, elapsed)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{
		"error":    err.Error(),
		"category": errorCategory(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
