package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"goldloan/internal/core"
	applog "goldloan/internal/log"
	"goldloan/internal/middleware/ratelimit"
	"goldloan/internal/middleware/security"
	"goldloan/internal/middleware/trace"
	"goldloan/internal/receipt"
	"goldloan/internal/session"
	appweb "goldloan/web"
)

// ReceiptMailer delivers a receipt by email.
type ReceiptMailer interface {
	SendReceipt(ctx context.Context, to string, r receipt.Receipt) error
}

// Options wires a Server.
type Options struct {
	Addr               string
	Policy             core.Policy
	Business           receipt.Business
	Sessions           session.Store
	Mailer             ReceiptMailer // nil disables receipt email
	Logger             *applog.Logger
	RateLimitPerMinute int
}

// Server serves the calculator wizard, receipt exports and the JSON API.
type Server struct {
	http.Server
	templates *template.Template
	logger    *applog.Logger

	policy   core.Policy
	business receipt.Business
	sessions session.Store
	mailer   ReceiptMailer
	now      func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and configures routes and
// middleware, returning a ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	if opts.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid accrual policy: %w", err)
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		templates:        t,
		logger:           logger,
		policy:           opts.Policy,
		business:         opts.Business,
		sessions:         opts.Sessions,
		mailer:           opts.Mailer,
		now:              time.Now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: security.NewDetector(opts.Logger),
		appMetrics:       newAppMetrics(),
	}
	s.traceMiddleware = trace.NewMiddleware(opts.Logger, s.securityDetector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.middleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Page not found.").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		MethodNotAllowedError(allowedMethods(r, req)).Write(w)
	})

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static)).Methods(http.MethodGet, http.MethodHead)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	noStore := func(h http.HandlerFunc) http.Handler { return security.NoStoreMiddleware(h) }

	// Wizard
	r.Handle("/", noStore(s.handleIndex)).Methods(http.MethodGet)
	r.HandleFunc("/calculate", s.handleCalculate).Methods(http.MethodPost)
	r.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)

	// Receipt
	r.Handle("/receipt", noStore(s.handleReceipt)).Methods(http.MethodPost)
	r.Handle("/receipt.pdf", noStore(s.handleReceiptPDF)).Methods(http.MethodGet)
	r.HandleFunc("/receipt/email", s.handleReceiptEmail).Methods(http.MethodPost)

	// API
	r.HandleFunc("/api/accrual", s.handleAPIAccrual).Methods(http.MethodPost)

	// Operations
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	return r
}

// allowedMethods lists the methods router accepts for the path of req.
func allowedMethods(router *mux.Router, req *http.Request) string {
	var allowed []string
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		candidate := req.Clone(req.Context())
		candidate.Method = method
		var match mux.RouteMatch
		if router.Match(candidate, &match) && match.MatchErr == nil {
			allowed = append(allowed, method)
		}
	}
	return strings.Join(allowed, ", ")
}

// middleware wraps h so every request, including 404s and static files, is
// logged, traced, screened and rate limited.
func (s *Server) middleware(h http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	}

	h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, onLimit, http.MethodPost)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	return applog.Middleware(s.logger)(h)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// renderTemplate executes name into a string so a failure never leaves a
// half-written response.
func (s *Server) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeTemplate renders name into b and sends it.
func (s *Server) writeTemplate(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldTemplate, name,
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender)
		InternalServerError("Something went wrong. Please try again.").Write(w)
		return
	}
	b.BodyHTML(html).Write(w)
}
