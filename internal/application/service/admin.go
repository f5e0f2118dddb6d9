package service

import (
	"context"

	"homestay/internal/application/models"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
)

// SetInspectionDisabled flips the administrator switch that lets officers
// skip inspection for an optional kind.
func (s *Service) SetInspectionDisabled(ctx context.Context, actor domain.Actor, kind models.Kind, disabled bool) error {
	if !actor.Role.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "only admins may change inspection rules")
	}
	if !kind.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown application kind").
			WithField("applicationKind", nil, kind)
	}
	if err := s.policies.SetInspectionDisabled(kind, disabled); err != nil {
		return dErrors.Wrap(err, dErrors.CodeConflict, "inspection is mandatory for this kind")
	}
	s.logAudit(ctx, "inspection_rule_changed",
		"user_id", actor.ID.String(),
		"kind", string(kind),
		"disabled", disabled,
	)
	return nil
}
