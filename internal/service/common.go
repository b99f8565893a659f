package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"
	"repairdesk/internal/repository"
	"repairdesk/pkg/pagination"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
)

var tracer = otel.Tracer("repairdesk/service")

// EventPublisher receives ledger events once the transaction that produced them
// has committed. Implementations must not block.
type EventPublisher interface {
	Publish(event string, data any)
}

// Event names pushed to live subscribers.
const (
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventOrderDeleted     = "order.deleted"
	EventServicesAttached = "order.services_attached"
	EventServiceDetached  = "order.service_detached"
	EventPurchaseCreated  = "purchase.created"
	EventPurchaseUpdated  = "purchase.updated"
	EventPurchaseDeleted  = "purchase.deleted"
)

func publish(p EventPublisher, event string, data any) {
	if p == nil {
		return
	}
	p.Publish(event, data)
}

func parseID(field, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, apperror.Validation(field, "invalid_id", "must be a numeric id")
	}
	return id, nil
}

func parseOptionalID(field, raw string) (snowflake.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return parseID(field, raw)
}

// notFoundAsReferential reports a missing referenced row as a referential error.
func notFoundAsReferential(err error, code, message string) error {
	if apperror.KindOf(err) == apperror.KindNotFound {
		return &apperror.Error{Kind: apperror.KindReferentialIntegrity, Code: code, Message: message, Err: err}
	}
	return err
}

func listParams(p pagination.Params) repository.ListParams {
	return repository.ListParams{Offset: p.Offset, Limit: p.Limit}
}

func writeAudit(ctx context.Context, repo repository.AuditRepository, actorID, action, entityType, entityID string, details any) error {
	entry := &model.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		entry.Details = datatypes.JSON(raw)
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
