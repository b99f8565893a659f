package service

import (
	"context"
	"fmt"
	"time"

	"repairdesk/internal/repository"
	"repairdesk/pkg/pagination"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	ActorID    string `json:"actor_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditListQuery struct {
	EntityType string
	EntityID   string
	pagination.Params
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, query AuditListQuery) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// GetAuditLogs returns the newest entries first.
func (s *auditService) GetAuditLogs(ctx context.Context, query AuditListQuery) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.auditRepo.List(ctx, repository.AuditFilter{
		EntityType: query.EntityType,
		EntityID:   query.EntityID,
		ListParams: listParams(query.Params),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		actor := l.ActorID
		if actor == "" {
			actor = "system"
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			ActorID:    actor,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Details:    string(l.Details),
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}
	return res, total, nil
}
