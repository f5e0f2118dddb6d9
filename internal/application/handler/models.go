package handler

import (
	"strings"
	"time"

	"homestay/internal/application/models"
	"homestay/internal/application/service"
	dErrors "homestay/pkg/domain-errors"
	textlist "homestay/pkg/platform/strings"
)

// ApplicationResponse is the wire form of an application: the stored record
// plus the derived dashboard stage and the decoded service context.
type ApplicationResponse struct {
	*models.Application
	CurrentStage         string                `json:"currentStage"`
	ServiceContext       models.ServiceContext `json:"serviceContext,omitempty"`
	AvailableTransitions []models.Status       `json:"availableTransitions,omitempty"`
}

func toApplicationResponse(app *models.Application) *ApplicationResponse {
	return &ApplicationResponse{
		Application:    app,
		CurrentStage:   app.Stage(),
		ServiceContext: app.ServiceContext,
	}
}

type ApplicationListResponse struct {
	Applications []*ApplicationResponse `json:"applications"`
}

func toApplicationList(apps []*models.Application) ApplicationListResponse {
	out := ApplicationListResponse{Applications: make([]*ApplicationResponse, 0, len(apps))}
	for _, a := range apps {
		out.Applications = append(out.Applications, toApplicationResponse(a))
	}
	return out
}

type ActionListResponse struct {
	Actions []*models.ApplicationAction `json:"actions"`
}

type DocumentListResponse struct {
	Documents []*models.Document `json:"documents"`
}

type DocumentRequest struct {
	DocumentType models.DocumentType `json:"documentType"`
	FileName     string              `json:"fileName"`
	StorageKey   string              `json:"storageKey"`
}

func (r DocumentRequest) toUpload() service.DocumentUpload {
	return service.DocumentUpload{DocumentType: r.DocumentType, FileName: r.FileName, StorageKey: r.StorageKey}
}

type TransitionRequest struct {
	Status   models.Status `json:"status"`
	Feedback string        `json:"feedback,omitempty"`
}

type ReviewRequest struct {
	Approve  bool   `json:"approve"`
	Feedback string `json:"feedback,omitempty"`
}

type GatewayCallbackRequest struct {
	GatewayReference string `json:"gatewayReference"`
}

type InspectionToggleRequest struct {
	Disabled bool `json:"disabled"`
}

// LegacyDraftRequest carries RC dates as YYYY-MM-DD strings. Empty dates are
// allowed while the draft is incomplete.
type LegacyDraftRequest struct {
	models.ApplicationDetails
	RCNumber     string `json:"rcNumber"`
	RCIssueDate  string `json:"rcIssueDate,omitempty"`
	RCExpiryDate string `json:"rcExpiryDate,omitempty"`
	GuardianName string `json:"guardianName,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (r LegacyDraftRequest) toDraft() (models.LegacyDraft, error) {
	issue, err := parseDate("rcIssueDate", r.RCIssueDate)
	if err != nil {
		return models.LegacyDraft{}, err
	}
	expiry, err := parseDate("rcExpiryDate", r.RCExpiryDate)
	if err != nil {
		return models.LegacyDraft{}, err
	}
	return models.LegacyDraft{
		ApplicationDetails: r.ApplicationDetails,
		RCNumber:           strings.TrimSpace(r.RCNumber),
		RCIssueDate:        issue,
		RCExpiryDate:       expiry,
		GuardianName:       r.GuardianName,
		Notes:              r.Notes,
	}, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, field+" must be a YYYY-MM-DD date").
			WithField(field, nil, value)
	}
	return &t, nil
}

// parseStatuses reads a comma separated, case-insensitive status filter.
func parseStatuses(raw string) []models.Status {
	var out []models.Status
	for _, s := range textlist.SplitListLower(raw) {
		out = append(out, models.Status(s))
	}
	return out
}
