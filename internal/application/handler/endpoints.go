package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"homestay/internal/application/models"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/platform/httputil"
)

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var details models.ApplicationDetails
	if !h.decode(w, r, &details) {
		return
	}
	app, err := h.service.CreateApplication(r.Context(), actor, details)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.present(actor, app))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	apps, err := h.service.ListForOwner(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationList(apps))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.service.GetApplication(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.present(actor, app))
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	var details models.ApplicationDetails
	if !h.decode(w, r, &details) {
		return
	}
	app, err := h.service.UpdateDraft(r.Context(), actor, id, details)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.present(actor, app))
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	if err := h.service.DiscardDraft(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.service.Submit(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.present(actor, app))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	var req TransitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Status.IsValid() {
		h.fail(w, r, dErrors.New(dErrors.CodeValidation, "unknown status").WithField("status", nil, req.Status))
		return
	}
	app, err := h.service.Transition(r.Context(), actor, id, req.Status, req.Feedback)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.present(actor, app))
}

func (h *Handler) handleListActions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	actions, err := h.service.ListActions(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if actions == nil {
		actions = []*models.ApplicationAction{}
	}
	httputil.WriteJSON(w, http.StatusOK, ActionListResponse{Actions: actions})
}

func (h *Handler) handleServiceCenter(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.ServiceCenter(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleCreateServiceRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	parentID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	var in models.ServiceRequestInput
	if !h.decode(w, r, &in) {
		return
	}
	app, err := h.service.CreateServiceRequest(r.Context(), actor, parentID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.present(actor, app))
}

func (h *Handler) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	payment, err := h.service.InitiatePayment(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, payment)
}

func (h *Handler) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	var req DocumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.AddDocument(r.Context(), actor, id, req.toUpload())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	docID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req DocumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.ReplaceDocument(r.Context(), actor, id, docID, req.toUpload())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	docs, err := h.service.ListDocuments(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	httputil.WriteJSON(w, http.StatusOK, DocumentListResponse{Documents: docs})
}

func (h *Handler) handleSaveLegacyDraft(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req LegacyDraftRequest
	if !h.decode(w, r, &req) {
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	app, err := h.service.SaveLegacyDraft(r.Context(), actor, draft)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.present(actor, app))
}

func (h *Handler) handleSubmitLegacy(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.service.SubmitLegacy(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.present(actor, app))
}

func (h *Handler) handleReviewLegacy(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	var req ReviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	app, err := h.service.ReviewLegacy(r.Context(), actor, id, req.Approve, req.Feedback)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.present(actor, app))
}

// handleOfficerQueue lists a district's applications. Officers default to
// their own district; admins must name one.
func (h *Handler) handleOfficerQueue(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	district := strings.TrimSpace(r.URL.Query().Get("district"))
	if district == "" {
		district = actor.District
	}
	if district == "" {
		h.fail(w, r, dErrors.New(dErrors.CodeBadRequest, "district is required").WithField("district", nil, ""))
		return
	}
	statuses := parseStatuses(r.URL.Query().Get("status"))
	for _, st := range statuses {
		if !st.IsValid() {
			h.fail(w, r, dErrors.New(dErrors.CodeBadRequest, "unknown status filter").WithField("status", nil, st))
			return
		}
	}
	apps, err := h.service.ListForDistrict(r.Context(), actor, district, statuses)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationList(apps))
}

func (h *Handler) handleToggleInspection(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	kind := models.Kind(chi.URLParam(r, "kind"))
	if !kind.IsValid() {
		h.fail(w, r, dErrors.New(dErrors.CodeBadRequest, "unknown application kind").WithField("kind", nil, kind))
		return
	}
	var req InspectionToggleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.SetInspectionDisabled(r.Context(), actor, kind, req.Disabled); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, req, ok := h.gatewayCallback(w, r)
	if !ok {
		return
	}
	app, err := h.service.ConfirmPayment(r.Context(), paymentID, req.GatewayReference)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

// handleOfficerConfirmPayment records a settlement the district officer
// verified by hand, such as a treasury challan.
func (h *Handler) handleOfficerConfirmPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	paymentID, req, ok := h.gatewayCallback(w, r)
	if !ok {
		return
	}
	app, err := h.service.ConfirmPaymentAsOfficer(r.Context(), actor, paymentID, req.GatewayReference)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.present(actor, app))
}

func (h *Handler) handleFailPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, req, ok := h.gatewayCallback(w, r)
	if !ok {
		return
	}
	payment, err := h.service.FailPayment(r.Context(), paymentID, req.GatewayReference)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) gatewayCallback(w http.ResponseWriter, r *http.Request) (domain.PaymentID, GatewayCallbackRequest, bool) {
	paymentID, err := domain.ParsePaymentID(chi.URLParam(r, "paymentID"))
	if err != nil {
		h.fail(w, r, err)
		return domain.PaymentID{}, GatewayCallbackRequest{}, false
	}
	var req GatewayCallbackRequest
	if !h.decode(w, r, &req) {
		return domain.PaymentID{}, GatewayCallbackRequest{}, false
	}
	if strings.TrimSpace(req.GatewayReference) == "" {
		h.fail(w, r, dErrors.New(dErrors.CodeValidation, "gatewayReference is required").WithField("gatewayReference", nil, ""))
		return domain.PaymentID{}, GatewayCallbackRequest{}, false
	}
	return paymentID, req, true
}

// present renders app with the transitions actor may take next.
func (h *Handler) present(actor domain.Actor, app *models.Application) *ApplicationResponse {
	resp := toApplicationResponse(app)
	resp.AvailableTransitions = h.service.AvailableTransitions(actor, app)
	return resp
}
