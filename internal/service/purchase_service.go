package service

//go:generate mockgen -source=purchase_service.go -destination=mocks/purchase_service.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"
	"repairdesk/internal/money"
	"repairdesk/internal/observability/logger"
	"repairdesk/internal/observability/metrics"
	"repairdesk/internal/repository"
	"repairdesk/pkg/pagination"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

type PurchaseListQuery struct {
	Search      string
	Status      string
	Store       string
	OrderID     string
	OrphansOnly bool
	pagination.Params
}

type PurchaseService interface {
	// CreatePurchase records a purchase. The order link is optional.
	CreatePurchase(ctx context.Context, actorID string, req CreatePurchaseRequest) (PurchaseResponse, error)
	UpdatePurchase(ctx context.Context, actorID, id string, req UpdatePurchaseRequest) (PurchaseResponse, error)
	GetPurchase(ctx context.Context, id string) (PurchaseResponse, error)
	ListPurchases(ctx context.Context, query PurchaseListQuery) ([]PurchaseResponse, int64, error)
	DeletePurchase(ctx context.Context, actorID, id string) error
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	orderRepo    repository.OrderRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	node         *snowflake.Node
	metrics      *metrics.LedgerMetrics
	events       EventPublisher
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	node *snowflake.Node,
	m *metrics.LedgerMetrics,
	events EventPublisher,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		orderRepo:    orderRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		node:         node,
		metrics:      m,
		events:       events,
	}
}

// applyPurchaseRequest fills p from req and verifies the linked order inside the caller's transaction.
func (s *purchaseService) applyPurchaseRequest(ctx context.Context, p *model.Purchase, req CreatePurchaseRequest) error {
	cost, err := money.Parse("cost", req.Cost)
	if err != nil {
		return err
	}
	orderID, err := parseOptionalID("order_id", req.OrderID)
	if err != nil {
		return err
	}

	p.Store = strings.TrimSpace(req.Store)
	p.Detail = strings.TrimSpace(req.Detail)
	p.Cost = cost
	p.Status = model.PurchaseStatus(req.Status)
	if p.Status == "" {
		p.Status = model.PurchaseStatusAwaitingDelivery
	}
	p.OrderID = nil
	p.Order = nil
	if err := p.Validate(); err != nil {
		return err
	}

	if orderID != 0 {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return notFoundAsReferential(err, "order_not_found", fmt.Sprintf("order %s does not exist", orderID))
		}
		p.OrderID = &order.ID
		p.Order = order
	}
	return nil
}

func (s *purchaseService) CreatePurchase(ctx context.Context, actorID string, req CreatePurchaseRequest) (PurchaseResponse, error) {
	purchase := model.Purchase{ID: s.node.Generate()}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.applyPurchaseRequest(txCtx, &purchase, req); err != nil {
			return err
		}
		if err := s.purchaseRepo.Create(txCtx, &purchase); err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionCreatePurchase, "purchase", purchase.ID.String(), req)
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	s.metrics.PurchaseRecorded(string(purchase.Status))
	logger.FromContext(ctx).Info("purchase recorded",
		zap.String("purchase_id", purchase.ID.String()),
		zap.Bool("orphan", purchase.OrderID == nil),
		zap.String("cost", money.Format(purchase.Cost)))

	res := toPurchaseResponse(&purchase)
	publish(s.events, EventPurchaseCreated, res)
	return res, nil
}

func (s *purchaseService) UpdatePurchase(ctx context.Context, actorID, id string, req UpdatePurchaseRequest) (PurchaseResponse, error) {
	purchaseID, err := parseID("id", id)
	if err != nil {
		return PurchaseResponse{}, err
	}

	var purchase *model.Purchase
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, err = s.purchaseRepo.FindByID(txCtx, purchaseID)
		if err != nil {
			return err
		}
		if err := s.applyPurchaseRequest(txCtx, purchase, req); err != nil {
			return err
		}
		if err := s.purchaseRepo.Update(txCtx, purchase); err != nil {
			return fmt.Errorf("failed to update purchase: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionUpdatePurchase, "purchase", purchase.ID.String(), req)
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	res := toPurchaseResponse(purchase)
	publish(s.events, EventPurchaseUpdated, res)
	return res, nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, id string) (PurchaseResponse, error) {
	purchaseID, err := parseID("id", id)
	if err != nil {
		return PurchaseResponse{}, err
	}
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		return PurchaseResponse{}, err
	}
	return toPurchaseResponse(purchase), nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, query PurchaseListQuery) ([]PurchaseResponse, int64, error) {
	filter := repository.PurchaseFilter{
		Search:      query.Search,
		Status:      model.PurchaseStatus(query.Status),
		Store:       query.Store,
		OrphansOnly: query.OrphansOnly,
		ListParams:  listParams(query.Params),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.Validation("status", "invalid_status", "unknown purchase status")
	}
	orderID, err := parseOptionalID("order_id", query.OrderID)
	if err != nil {
		return nil, 0, err
	}
	filter.OrderID = orderID

	purchases, total, err := s.purchaseRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchases: %w", err)
	}
	res := make([]PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		res = append(res, toPurchaseResponse(&purchases[i]))
	}
	return res, total, nil
}

func (s *purchaseService) DeletePurchase(ctx context.Context, actorID, id string) error {
	purchaseID, err := parseID("id", id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.purchaseRepo.Delete(txCtx, purchaseID); err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionDeletePurchase, "purchase", purchaseID.String(), nil)
	})
	if err != nil {
		return err
	}

	publish(s.events, EventPurchaseDeleted, map[string]string{"id": purchaseID.String()})
	return nil
}
