package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// AuditService records and lists admin write actions.
type AuditService struct {
	repo repositories.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repositories.AuditRepository) *AuditService {
	return &AuditService{
		repo: repo,
	}
}

// Record appends an audit entry. Storage failures are logged, not returned.
func (s *AuditService) Record(ctx context.Context, actor Actor, action, resource string, resourceID uint64, detail string) {
	entry := &models.AuditEntry{
		ID:            uuid.NewString(),
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		Action:        action,
		Resource:      resource,
		ResourceID:    resourceID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Record(ctx, entry); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"action":      action,
			"resource":    resource,
			"resource_id": resourceID,
		}).Error("Failed to record audit entry")
	}
}

// List returns audit entries matching filter, newest first.
func (s *AuditService) List(ctx context.Context, filter repositories.AuditFilter) ([]models.AuditEntry, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
