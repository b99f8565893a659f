package service

import (
	"context"
	"fmt"

	"repairdesk/internal/ledger"
	"repairdesk/internal/model"
	"repairdesk/internal/money"
	"repairdesk/internal/repository"
)

const recentOrdersLimit = 5

type StatisticsResponse struct {
	TotalOrders     int64            `json:"total_orders"`
	ActiveOrders    int64            `json:"active_orders"`
	TotalClients    int64            `json:"total_clients"`
	OrphanPurchases int64            `json:"orphan_purchases"`
	OrdersByStatus  map[string]int64 `json:"orders_by_status"`
	OrdersByKind    map[string]int64 `json:"orders_by_legal_kind"`
	TotalDuty       string           `json:"total_duty"`
	OutstandingDuty string           `json:"outstanding_duty"`
	RecentOrders    []OrderResponse  `json:"recent_orders"`
}

type StatisticsService interface {
	// GetStatistics builds the dashboard from one consistent read.
	GetStatistics(ctx context.Context) (StatisticsResponse, error)
}

type statisticsService struct {
	statsRepo repository.StatisticsRepository
	orderRepo repository.OrderRepository
	txManager repository.TransactionManager
	settings  OrderSettings
}

func NewStatisticsService(
	statsRepo repository.StatisticsRepository,
	orderRepo repository.OrderRepository,
	txManager repository.TransactionManager,
	settings OrderSettings,
) StatisticsService {
	return &statisticsService{
		statsRepo: statsRepo,
		orderRepo: orderRepo,
		txManager: txManager,
		settings:  settings,
	}
}

func bucketMap(buckets []repository.Bucket) map[string]int64 {
	out := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		out[b.Key] = b.Count
	}
	return out
}

func (s *statisticsService) GetStatistics(ctx context.Context) (res StatisticsResponse, err error) {
	ctx, span := tracer.Start(ctx, "StatisticsService.GetStatistics")
	defer func() { endSpan(span, err) }()

	err = s.txManager.RunInSnapshot(ctx, func(txCtx context.Context) error {
		if res.TotalOrders, err = s.statsRepo.CountOrders(txCtx); err != nil {
			return fmt.Errorf("failed to count orders: %w", err)
		}
		if res.ActiveOrders, err = s.statsRepo.CountActiveOrders(txCtx); err != nil {
			return fmt.Errorf("failed to count active orders: %w", err)
		}
		if res.TotalClients, err = s.statsRepo.CountClients(txCtx); err != nil {
			return fmt.Errorf("failed to count clients: %w", err)
		}
		if res.OrphanPurchases, err = s.statsRepo.CountOrphanPurchases(txCtx); err != nil {
			return fmt.Errorf("failed to count orphan purchases: %w", err)
		}

		byStatus, err := s.statsRepo.OrdersByStatus(txCtx)
		if err != nil {
			return err
		}
		res.OrdersByStatus = bucketMap(byStatus)
		byKind, err := s.statsRepo.OrdersByLegalKind(txCtx)
		if err != nil {
			return err
		}
		res.OrdersByKind = bucketMap(byKind)

		orders, err := s.orderRepo.ListForRollup(txCtx, repository.RollupFilter{})
		if err != nil {
			return fmt.Errorf("failed to load orders for rollup: %w", err)
		}
		res.TotalDuty = money.Format(ledger.RollupDuty(orders))

		open := orders[:0:0]
		for _, o := range orders {
			if !isClosed(o.Status) {
				open = append(open, o)
			}
		}
		res.OutstandingDuty = money.Format(ledger.RollupDuty(open))

		recent, err := s.statsRepo.RecentOrders(txCtx, recentOrdersLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent orders: %w", err)
		}
		res.RecentOrders = make([]OrderResponse, 0, len(recent))
		for i := range recent {
			res.RecentOrders = append(res.RecentOrders, toOrderResponse(&recent[i], s.settings, false))
		}
		return nil
	})
	if err != nil {
		return StatisticsResponse{}, err
	}
	return res, nil
}

func isClosed(status model.OrderStatus) bool {
	for _, s := range model.ClosedOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
