package repository

import (
	"context"
	"testing"

	"repairdesk/internal/database"
	"repairdesk/internal/model"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	tx   TransactionManager

	clients   ClientRepository
	catalog   CatalogRepository
	orders    OrderRepository
	purchases PurchaseRepository
	sequences SequenceRepository
	stats     StatisticsRepository
	audit     AuditRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite("")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	return &fixture{
		db:        db,
		node:      node,
		tx:        NewTransactionManager(db),
		clients:   NewClientRepository(db),
		catalog:   NewCatalogRepository(db),
		orders:    NewOrderRepository(db),
		purchases: NewPurchaseRepository(db),
		sequences: NewSequenceRepository(db),
		stats:     NewStatisticsRepository(db),
		audit:     NewAuditRepository(db),
	}
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) client(t *testing.T, phone string, kind model.LegalKind) *model.Client {
	t.Helper()
	c := &model.Client{ID: f.node.Generate(), Name: "Client " + phone, Phone: phone, LegalKind: kind}
	if kind == model.LegalKindOrganization {
		c.Company = "Acme"
	}
	if err := f.clients.Create(context.Background(), c); err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func (f *fixture) service(t *testing.T, name, price string) *model.Service {
	t.Helper()
	ctx := context.Background()
	cat := &model.Category{ID: f.node.Generate(), Title: "Cat " + name, Slug: "cat-" + f.node.Generate().String()}
	if err := f.catalog.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	svc := &model.Service{ID: f.node.Generate(), CategoryID: cat.ID, Name: name, Price: money(price)}
	if err := f.catalog.CreateService(ctx, svc); err != nil {
		t.Fatalf("create service: %v", err)
	}
	return svc
}

func (f *fixture) order(t *testing.T, clientID snowflake.ID, equipment string) *model.Order {
	t.Helper()
	ctx := context.Background()
	var o *model.Order
	err := f.tx.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := f.sequences.Next(txCtx, model.SequenceOrderNumber)
		if err != nil {
			return err
		}
		o = &model.Order{
			ID:                f.node.Generate(),
			Number:            number,
			ClientID:          clientID,
			AcceptedEquipment: equipment,
			Detail:            "broken",
			Status:            model.OrderStatusInProgress,
		}
		return f.orders.Create(txCtx, o)
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func (f *fixture) line(t *testing.T, orderID, serviceID snowflake.ID, price string) {
	t.Helper()
	err := f.orders.CreateLines(context.Background(), []model.OrderServiceLine{
		{ID: f.node.Generate(), OrderID: orderID, ServiceID: serviceID, CapturedPrice: money(price)},
	})
	if err != nil {
		t.Fatalf("create line: %v", err)
	}
}

func (f *fixture) purchase(t *testing.T, orderID *snowflake.ID, detail, cost string) *model.Purchase {
	t.Helper()
	p := &model.Purchase{
		ID:      f.node.Generate(),
		OrderID: orderID,
		Store:   "Parts Co",
		Detail:  detail,
		Cost:    money(cost),
		Status:  model.PurchaseStatusAwaitingDelivery,
	}
	if err := f.purchases.Create(context.Background(), p); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	return p
}
