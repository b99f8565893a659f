package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"repairdesk/internal/database"
	"repairdesk/internal/repository"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type recordedEvent struct {
	name string
	data any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: event, data: data})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.name)
	}
	return out
}

type fixture struct {
	db     *gorm.DB
	events *recorder

	clients   ClientService
	catalog   CatalogService
	orders    OrderService
	purchases PurchaseService
	stats     StatisticsService
	audit     AuditService
}

func newFixture(t *testing.T, settings OrderSettings) *fixture {
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

	tx := repository.NewTransactionManager(db)
	clientRepo := repository.NewClientRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	events := &recorder{}

	return &fixture{
		db:        db,
		events:    events,
		clients:   NewClientService(clientRepo, orderRepo, auditRepo, tx, node),
		catalog:   NewCatalogService(catalogRepo, auditRepo, tx, node),
		orders:    NewOrderService(orderRepo, clientRepo, catalogRepo, repository.NewSequenceRepository(db), auditRepo, tx, node, settings, nil, events),
		purchases: NewPurchaseService(purchaseRepo, orderRepo, auditRepo, tx, node, nil, events),
		stats:     NewStatisticsService(repository.NewStatisticsRepository(db), orderRepo, tx, settings),
		audit:     NewAuditService(auditRepo),
	}
}

var defaultSettings = OrderSettings{CodePrefix: "RO", CodePad: 6, MaxServicesPerOrder: 10}

var phoneSeq int

func (f *fixture) client(t *testing.T) ClientResponse {
	t.Helper()
	phoneSeq++
	phone := fmt.Sprintf("+7999%07d", phoneSeq)
	c, err := f.clients.CreateClient(context.Background(), "tester", CreateClientRequest{
		Name:      "Client " + phone,
		Phone:     phone,
		LegalKind: "individual",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

var slugSeq int

func (f *fixture) service(t *testing.T, name, price string) ServiceResponse {
	t.Helper()
	ctx := context.Background()
	slugSeq++
	cat, err := f.catalog.CreateCategory(ctx, "tester", CreateCategoryRequest{Title: "Cat " + name, Slug: fmt.Sprintf("cat-%04d", slugSeq)})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	svc, err := f.catalog.CreateService(ctx, "tester", CreateServiceRequest{CategoryID: cat.ID, Name: name, Price: price})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return svc
}

func (f *fixture) order(t *testing.T, clientID, advance, paid string, services ...AttachServiceItem) OrderResponse {
	t.Helper()
	o, err := f.orders.CreateOrder(context.Background(), "tester", CreateOrderRequest{
		ClientID:          clientID,
		AcceptedEquipment: "Laptop",
		Detail:            "Does not boot",
		Advance:           advance,
		Paid:              paid,
		Services:          services,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func (f *fixture) purchase(t *testing.T, orderID, cost string) PurchaseResponse {
	t.Helper()
	p, err := f.purchases.CreatePurchase(context.Background(), "tester", CreatePurchaseRequest{
		OrderID: orderID,
		Store:   "Parts Co",
		Detail:  "Part for " + orderID,
		Cost:    cost,
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	return p
}

func item(serviceID string) AttachServiceItem {
	return AttachServiceItem{ServiceID: serviceID}
}

func itemAt(serviceID, price string) AttachServiceItem {
	return AttachServiceItem{ServiceID: serviceID, Price: &price}
}

func str(s string) *string { return &s }
