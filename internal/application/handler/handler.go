package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"homestay/internal/application/eligibility"
	"homestay/internal/application/models"
	"homestay/internal/application/service"
	"homestay/internal/platform/metrics"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/platform/httputil"
	authmw "homestay/pkg/platform/middleware/auth"
	"homestay/pkg/platform/middleware/callback"
	"homestay/pkg/platform/middleware/metadata"
	request "homestay/pkg/platform/middleware/request"
	"homestay/pkg/platform/middleware/requesttime"
	"homestay/pkg/requestcontext"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks homestay/internal/application/handler Service

// Service is the workflow surface the HTTP layer drives.
type Service interface {
	CreateApplication(ctx context.Context, actor domain.Actor, details models.ApplicationDetails) (*models.Application, error)
	UpdateDraft(ctx context.Context, actor domain.Actor, id domain.ApplicationID, details models.ApplicationDetails) (*models.Application, error)
	GetApplication(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.Application, error)
	ListForOwner(ctx context.Context, actor domain.Actor) ([]*models.Application, error)
	ListForDistrict(ctx context.Context, actor domain.Actor, district string, statuses []models.Status) ([]*models.Application, error)
	ListActions(ctx context.Context, actor domain.Actor, id domain.ApplicationID) ([]*models.ApplicationAction, error)
	DiscardDraft(ctx context.Context, actor domain.Actor, id domain.ApplicationID) error
	ServiceCenter(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*eligibility.Summary, error)
	AvailableTransitions(actor domain.Actor, app *models.Application) []models.Status

	Submit(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.Application, error)
	Transition(ctx context.Context, actor domain.Actor, id domain.ApplicationID, to models.Status, feedback string) (*models.Application, error)
	CreateServiceRequest(ctx context.Context, actor domain.Actor, parentID domain.ApplicationID, in models.ServiceRequestInput) (*models.Application, error)

	AddDocument(ctx context.Context, actor domain.Actor, appID domain.ApplicationID, upload service.DocumentUpload) (*models.Document, error)
	ReplaceDocument(ctx context.Context, actor domain.Actor, appID domain.ApplicationID, docID domain.DocumentID, upload service.DocumentUpload) (*models.Document, error)
	ListDocuments(ctx context.Context, actor domain.Actor, appID domain.ApplicationID) ([]*models.Document, error)

	InitiatePayment(ctx context.Context, actor domain.Actor, appID domain.ApplicationID) (*models.Payment, error)
	ConfirmPayment(ctx context.Context, paymentID domain.PaymentID, gatewayRef string) (*models.Application, error)
	ConfirmPaymentAsOfficer(ctx context.Context, actor domain.Actor, paymentID domain.PaymentID, gatewayRef string) (*models.Application, error)
	FailPayment(ctx context.Context, paymentID domain.PaymentID, gatewayRef string) (*models.Payment, error)

	SaveLegacyDraft(ctx context.Context, actor domain.Actor, draft models.LegacyDraft) (*models.Application, error)
	SubmitLegacy(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.Application, error)
	ReviewLegacy(ctx context.Context, actor domain.Actor, id domain.ApplicationID, approve bool, feedback string) (*models.Application, error)

	SetInspectionDisabled(ctx context.Context, actor domain.Actor, kind models.Kind, disabled bool) error
}

// Handler serves the application workflow API.
type Handler struct {
	logger         *slog.Logger
	service        Service
	metrics        *metrics.Metrics
	jwtValidator   authmw.JWTValidator
	revocations    authmw.TokenRevocationChecker
	gatewayToken   string
	requestTimeout time.Duration
	trustProxy     bool
}

type Option func(*Handler)

func WithRevocationChecker(c authmw.TokenRevocationChecker) Option {
	return func(h *Handler) {
		h.revocations = c
	}
}

// WithGatewayToken sets the shared secret the payment gateway presents on
// callbacks. Without it the callback routes reject every request.
func WithGatewayToken(token string) Option {
	return func(h *Handler) {
		h.gatewayToken = token
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

func WithTrustProxy(trust bool) Option {
	return func(h *Handler) {
		h.trustProxy = trust
	}
}

func New(svc Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator authmw.JWTValidator, opts ...Option) *Handler {
	h := &Handler{
		logger:         logger,
		service:        svc,
		metrics:        m,
		jwtValidator:   jwtValidator,
		requestTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the workflow routes on r.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(request.Recovery(h.logger))
	router.Use(request.RequestID)
	router.Use(metadata.ClientMetadata(h.trustProxy))
	router.Use(requesttime.Middleware)
	router.Use(request.Logger(h.logger))
	router.Use(request.Timeout(h.requestTimeout))
	router.Use(request.ContentTypeJSON)
	if h.metrics != nil {
		router.Use(metrics.LatencyMiddleware(h.metrics))
	}

	router.Group(func(r chi.Router) {
		r.Use(callback.RequireGatewayToken(h.gatewayToken, h.logger))
		r.Post("/payments/{paymentID}/confirm", h.handleConfirmPayment)
		r.Post("/payments/{paymentID}/fail", h.handleFailPayment)
	})

	router.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(h.jwtValidator, h.revocations, h.logger))

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", h.handleCreate)
			r.Get("/", h.handleListMine)
			r.Route("/{applicationID}", func(r chi.Router) {
				r.Get("/", h.handleGet)
				r.Put("/", h.handleUpdateDraft)
				r.Delete("/", h.handleDiscard)
				r.Post("/submit", h.handleSubmit)
				r.Post("/transitions", h.handleTransition)
				r.Get("/actions", h.handleListActions)
				r.Get("/service-center", h.handleServiceCenter)
				r.Post("/service-requests", h.handleCreateServiceRequest)
				r.Post("/payments", h.handleInitiatePayment)
				r.Post("/documents", h.handleAddDocument)
				r.Get("/documents", h.handleListDocuments)
				r.Put("/documents/{documentID}", h.handleReplaceDocument)
			})
		})

		r.Put("/legacy/draft", h.handleSaveLegacyDraft)
		r.Post("/legacy/{applicationID}/submit", h.handleSubmitLegacy)

		r.With(authmw.RequireRole(h.logger, domain.RoleDealingAssistant, domain.RoleDistrictOfficer, domain.RoleAdmin, domain.RoleSuperAdmin)).
			Get("/officer/queue", h.handleOfficerQueue)
		r.With(authmw.RequireRole(h.logger, domain.RoleDistrictOfficer)).
			Post("/officer/payments/{paymentID}/confirm", h.handleOfficerConfirmPayment)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(h.logger, domain.RoleAdmin, domain.RoleSuperAdmin))
			r.Post("/legacy/{applicationID}/review", h.handleReviewLegacy)
			r.Put("/admin/inspection/{kind}", h.handleToggleInspection)
		})
	})

	r.Mount("/", router)
}

// actor returns the authenticated actor, writing a 500 when the auth
// middleware was not installed.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := requestcontext.Actor(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "actor missing from context despite auth middleware",
			"request_id", request.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return domain.Actor{}, false
	}
	return actor, true
}

func (h *Handler) applicationID(w http.ResponseWriter, r *http.Request) (domain.ApplicationID, bool) {
	id, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		h.fail(w, r, err)
		return domain.ApplicationID{}, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httputil.DecodeJSON(r, v); err != nil {
		h.fail(w, r, err)
		return false
	}
	return true
}

// fail writes err. Client errors log at warn; anything else is logged in
// full and rendered opaque.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	if de, ok := dErrors.As(err); ok && de.Code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, "request refused",
			"code", de.Code,
			"error", err.Error(),
			"path", r.URL.Path,
			"request_id", requestID,
		)
	} else {
		h.logger.ErrorContext(ctx, "request failed",
			"error", err.Error(),
			"path", r.URL.Path,
			"request_id", requestID,
		)
	}
	httputil.WriteError(w, err)
}
