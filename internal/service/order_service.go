package service

//go:generate mockgen -source=order_service.go -destination=mocks/order_service.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"repairdesk/internal/apperror"
	"repairdesk/internal/config"
	"repairdesk/internal/ledger"
	"repairdesk/internal/model"
	"repairdesk/internal/money"
	"repairdesk/internal/observability/logger"
	"repairdesk/internal/observability/metrics"
	"repairdesk/internal/repository"
	"repairdesk/pkg/pagination"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderSettings are the order numbering and line limits.
type OrderSettings struct {
	CodePrefix          string
	CodePad             int
	MaxServicesPerOrder int
}

func NewOrderSettings(cfg config.Config) OrderSettings {
	return OrderSettings{
		CodePrefix:          cfg.Orders.CodePrefix,
		CodePad:             cfg.Orders.CodePad,
		MaxServicesPerOrder: cfg.Orders.MaxServicesPerOrder,
	}
}

type OrderListQuery struct {
	Search      string
	Status      string
	ClientID    string
	LegalKind   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	pagination.Params
}

type DutyQuery struct {
	Status   string
	ClientID string
}

type OrderService interface {
	// CreateOrder issues the next order number and optionally attaches services, all in one transaction.
	CreateOrder(ctx context.Context, actorID string, req CreateOrderRequest) (OrderResponse, error)
	GetOrder(ctx context.Context, id string) (OrderResponse, error)
	ListOrders(ctx context.Context, query OrderListQuery) ([]OrderResponse, int64, error)
	UpdateOrder(ctx context.Context, actorID, id string, req UpdateOrderRequest) (OrderResponse, error)
	DeleteOrder(ctx context.Context, actorID, id string) error

	// AttachServices adds a batch of catalog services to an order. Prices are captured
	// from the catalog unless given explicitly. The batch is all-or-nothing.
	AttachServices(ctx context.Context, actorID, orderID string, req AttachServicesRequest) ([]OrderLineResponse, error)
	DetachService(ctx context.Context, actorID, orderID, serviceID string) error

	// Duty sums the duty of every order matching the query in one consistent read.
	Duty(ctx context.Context, query DutyQuery) (DutyRollupResponse, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	clientRepo   repository.ClientRepository
	catalogRepo  repository.CatalogRepository
	sequenceRepo repository.SequenceRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	node         *snowflake.Node
	settings     OrderSettings
	metrics      *metrics.LedgerMetrics
	events       EventPublisher
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	catalogRepo repository.CatalogRepository,
	sequenceRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	node *snowflake.Node,
	settings OrderSettings,
	m *metrics.LedgerMetrics,
	events EventPublisher,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		clientRepo:   clientRepo,
		catalogRepo:  catalogRepo,
		sequenceRepo: sequenceRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		node:         node,
		settings:     settings,
		metrics:      m,
		events:       events,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, actorID string, req CreateOrderRequest) (res OrderResponse, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer func() { endSpan(span, err) }()

	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return OrderResponse{}, err
	}
	order := model.Order{
		ID:                s.node.Generate(),
		ClientID:          clientID,
		AcceptedEquipment: strings.TrimSpace(req.AcceptedEquipment),
		Detail:            strings.TrimSpace(req.Detail),
		Status:            model.OrderStatus(req.Status),
	}
	if order.Status == "" {
		order.Status = model.OrderStatusInProgress
	}
	if order.Advance, err = money.ParseOptional("advance", req.Advance, decimal.Zero); err != nil {
		return OrderResponse{}, err
	}
	if order.Paid, err = money.ParseOptional("paid", req.Paid, decimal.Zero); err != nil {
		return OrderResponse{}, err
	}
	if order.ServicesTotalOverride, err = parseMoneyPtr("services_total_override", req.ServicesTotalOverride); err != nil {
		return OrderResponse{}, err
	}
	if err := order.Validate(); err != nil {
		return OrderResponse{}, err
	}
	requests, err := toAttachRequests(req.Services)
	if err != nil {
		return OrderResponse{}, err
	}

	var attached int
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.clientRepo.FindByID(txCtx, clientID); err != nil {
			return notFoundAsReferential(err, "client_not_found", fmt.Sprintf("client %s does not exist", clientID))
		}

		number, err := s.sequenceRepo.Next(txCtx, model.SequenceOrderNumber)
		if err != nil {
			return fmt.Errorf("failed to issue order number: %w", err)
		}
		order.Number = number

		if err := s.orderRepo.Create(txCtx, &order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if len(requests) > 0 {
			lines, err := s.attachInTx(txCtx, order.ID, requests)
			if err != nil {
				return err
			}
			attached = len(lines)
		}

		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionCreateOrder, "order", order.ID.String(), req)
	})
	if err != nil {
		if len(requests) > 0 {
			s.metrics.AttachRejected(string(apperror.KindOf(err)))
		}
		return OrderResponse{}, err
	}

	s.metrics.OrderCreated()
	if attached > 0 {
		s.metrics.LinesAttached(attached)
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int64("order.number", order.Number),
		attribute.Int("order.lines", attached),
	)
	logger.FromContext(ctx).Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("code", order.Code(s.settings.CodePrefix, s.settings.CodePad)),
		zap.Int("lines", attached))

	res, err = s.GetOrder(ctx, order.ID.String())
	if err != nil {
		return OrderResponse{}, err
	}
	publish(s.events, EventOrderCreated, res)
	return res, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (OrderResponse, error) {
	orderID, err := parseID("id", id)
	if err != nil {
		return OrderResponse{}, err
	}

	var order *model.Order
	err = s.txManager.RunInSnapshot(ctx, func(txCtx context.Context) error {
		order, err = s.orderRepo.FindByIDWithLedger(txCtx, orderID)
		return err
	})
	if err != nil {
		return OrderResponse{}, err
	}
	return toOrderResponse(order, s.settings, true), nil
}

func (s *orderService) ListOrders(ctx context.Context, query OrderListQuery) ([]OrderResponse, int64, error) {
	filter := repository.OrderFilter{
		Search:      query.Search,
		Status:      model.OrderStatus(query.Status),
		LegalKind:   model.LegalKind(query.LegalKind),
		CreatedFrom: query.CreatedFrom,
		CreatedTo:   query.CreatedTo,
		ListParams:  listParams(query.Params),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.Validation("status", "invalid_status", "unknown order status")
	}
	if filter.LegalKind != "" && !filter.LegalKind.Valid() {
		return nil, 0, apperror.Validation("legal_kind", "invalid_legal_kind", "must be individual or organization")
	}
	clientID, err := parseOptionalID("client_id", query.ClientID)
	if err != nil {
		return nil, 0, err
	}
	filter.ClientID = clientID

	var (
		orders []model.Order
		total  int64
	)
	err = s.txManager.RunInSnapshot(ctx, func(txCtx context.Context) error {
		orders, total, err = s.orderRepo.List(txCtx, filter)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toOrderResponse(&orders[i], s.settings, false))
	}
	return res, total, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, actorID, id string, req UpdateOrderRequest) (OrderResponse, error) {
	orderID, err := parseID("id", id)
	if err != nil {
		return OrderResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := applyOrderUpdate(order, req); err != nil {
			return err
		}
		if err := order.Validate(); err != nil {
			return err
		}
		if req.ClientID != nil {
			if _, err := s.clientRepo.FindByID(txCtx, order.ClientID); err != nil {
				return notFoundAsReferential(err, "client_not_found", fmt.Sprintf("client %s does not exist", order.ClientID))
			}
		}
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionUpdateOrder, "order", order.ID.String(), req)
	})
	if err != nil {
		return OrderResponse{}, err
	}

	res, err := s.GetOrder(ctx, id)
	if err != nil {
		return OrderResponse{}, err
	}
	publish(s.events, EventOrderUpdated, res)
	return res, nil
}

func applyOrderUpdate(order *model.Order, req UpdateOrderRequest) error {
	if req.ClientID != nil {
		clientID, err := parseID("client_id", *req.ClientID)
		if err != nil {
			return err
		}
		order.ClientID = clientID
	}
	if req.AcceptedEquipment != nil {
		order.AcceptedEquipment = strings.TrimSpace(*req.AcceptedEquipment)
	}
	if req.Detail != nil {
		order.Detail = strings.TrimSpace(*req.Detail)
	}
	if req.Status != nil {
		order.Status = model.OrderStatus(*req.Status)
	}
	if req.Advance != nil {
		v, err := money.Parse("advance", *req.Advance)
		if err != nil {
			return err
		}
		order.Advance = v
	}
	if req.Paid != nil {
		v, err := money.Parse("paid", *req.Paid)
		if err != nil {
			return err
		}
		order.Paid = v
	}
	if req.ServicesTotalOverride.Set {
		v, err := parseMoneyPtr("services_total_override", req.ServicesTotalOverride.Value)
		if err != nil {
			return err
		}
		order.ServicesTotalOverride = v
	}
	return nil
}

func (s *orderService) DeleteOrder(ctx context.Context, actorID, id string) error {
	orderID, err := parseID("id", id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Delete(txCtx, orderID); err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionDeleteOrder, "order", orderID.String(), nil)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("order deleted", zap.String("order_id", orderID.String()))
	publish(s.events, EventOrderDeleted, map[string]string{"id": orderID.String()})
	return nil
}

func toAttachRequests(items []AttachServiceItem) ([]ledger.AttachRequest, error) {
	out := make([]ledger.AttachRequest, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("services[%d]", i)
		serviceID, err := parseID(field+".service_id", item.ServiceID)
		if err != nil {
			return nil, err
		}
		price, err := parseMoneyPtr(field+".price", item.Price)
		if err != nil {
			return nil, err
		}
		out = append(out, ledger.AttachRequest{ServiceID: serviceID, Price: price})
	}
	return out, nil
}

// attachInTx must run inside a transaction that holds the order row lock.
func (s *orderService) attachInTx(txCtx context.Context, orderID snowflake.ID, requests []ledger.AttachRequest) ([]model.OrderServiceLine, error) {
	existing, err := s.orderRepo.ListLines(txCtx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}

	ids := make([]snowflake.ID, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ServiceID)
	}
	catalog, err := s.catalogRepo.FindServicesByIDs(txCtx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}

	lines, err := ledger.SnapshotLines(orderID, existing, catalog, requests, s.settings.MaxServicesPerOrder)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].ID = s.node.Generate()
	}
	if err := s.orderRepo.CreateLines(txCtx, lines); err != nil {
		return nil, fmt.Errorf("failed to store order lines: %w", err)
	}
	for i := range lines {
		svc := catalog[lines[i].ServiceID]
		lines[i].Service = &svc
	}
	return lines, nil
}

func (s *orderService) AttachServices(ctx context.Context, actorID, orderID string, req AttachServicesRequest) (res []OrderLineResponse, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.AttachServices")
	defer func() { endSpan(span, err) }()

	id, err := parseID("order_id", orderID)
	if err != nil {
		return nil, err
	}
	requests, err := toAttachRequests(req.Services)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", orderID), attribute.Int("batch.size", len(requests)))

	var lines []model.OrderServiceLine
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.orderRepo.FindByIDForUpdate(txCtx, id); err != nil {
			return notFoundAsReferential(err, "order_not_found", fmt.Sprintf("order %s does not exist", orderID))
		}
		lines, err = s.attachInTx(txCtx, id, requests)
		if err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionAttachServices, "order", orderID, req)
	})
	if err != nil {
		s.metrics.AttachRejected(string(apperror.KindOf(err)))
		logger.FromContext(ctx).Warn("attach services rejected", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}

	s.metrics.LinesAttached(len(lines))
	res = make([]OrderLineResponse, 0, len(lines))
	for i := range lines {
		res = append(res, toLineResponse(&lines[i]))
	}
	logger.FromContext(ctx).Info("services attached", zap.String("order_id", orderID), zap.Int("lines", len(lines)))
	publish(s.events, EventServicesAttached, map[string]any{"order_id": orderID, "services": res})
	return res, nil
}

func (s *orderService) DetachService(ctx context.Context, actorID, orderID, serviceID string) error {
	oid, err := parseID("order_id", orderID)
	if err != nil {
		return err
	}
	sid, err := parseID("service_id", serviceID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.orderRepo.FindByIDForUpdate(txCtx, oid); err != nil {
			return err
		}
		if err := s.orderRepo.DeleteLine(txCtx, oid, sid); err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionDetachService, "order", orderID, map[string]string{"service_id": serviceID})
	})
	if err != nil {
		return err
	}

	publish(s.events, EventServiceDetached, map[string]string{"order_id": orderID, "service_id": serviceID})
	return nil
}

func (s *orderService) Duty(ctx context.Context, query DutyQuery) (res DutyRollupResponse, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.Duty")
	defer func() { endSpan(span, err) }()

	filter := repository.RollupFilter{Status: model.OrderStatus(query.Status)}
	if filter.Status != "" && !filter.Status.Valid() {
		return DutyRollupResponse{}, apperror.Validation("status", "invalid_status", "unknown order status")
	}
	if filter.ClientID, err = parseOptionalID("client_id", query.ClientID); err != nil {
		return DutyRollupResponse{}, err
	}

	start := time.Now()
	var orders []model.Order
	err = s.txManager.RunInSnapshot(ctx, func(txCtx context.Context) error {
		orders, err = s.orderRepo.ListForRollup(txCtx, filter)
		return err
	})
	if err != nil {
		return DutyRollupResponse{}, fmt.Errorf("failed to load orders for rollup: %w", err)
	}

	summary := ledger.Summarize(orders)
	s.metrics.ObserveRollup(summary.Orders, time.Since(start))
	span.SetAttributes(attribute.Int("rollup.orders", summary.Orders))
	return toDutyRollupResponse(summary), nil
}
