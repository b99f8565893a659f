package service

import (
	"context"
	"testing"
)

func TestStatisticsService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)
	a := f.service(t, "Diagnostics", "1000.00")
	client := f.client(t)

	open := f.order(t, client.ID, "", "", item(a.ID))
	done := f.order(t, client.ID, "", "200.00", item(a.ID))
	f.purchase(t, open.ID, "500.00")
	f.purchase(t, "", "75.00")
	if _, err := f.orders.UpdateOrder(ctx, "tester", done.ID, UpdateOrderRequest{Status: str("completed")}); err != nil {
		t.Fatalf("close order: %v", err)
	}

	got, err := f.stats.GetStatistics(ctx)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}

	if got.TotalOrders != 2 || got.ActiveOrders != 1 || got.TotalClients != 1 || got.OrphanPurchases != 1 {
		t.Fatalf("unexpected counts %+v", got)
	}
	if got.OrdersByStatus["in_progress"] != 1 || got.OrdersByStatus["completed"] != 1 {
		t.Fatalf("unexpected status buckets %v", got.OrdersByStatus)
	}
	if got.OrdersByKind["individual"] != 2 {
		t.Fatalf("unexpected legal kind buckets %v", got.OrdersByKind)
	}
	if got.TotalDuty != "2300.00" || got.OutstandingDuty != "1500.00" {
		t.Fatalf("duty = %s total, %s outstanding", got.TotalDuty, got.OutstandingDuty)
	}
	if len(got.RecentOrders) != 2 || got.RecentOrders[0].ID != done.ID {
		t.Fatalf("unexpected recent orders %+v", got.RecentOrders)
	}
}

func TestAuditService_RecordsWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)
	a := f.service(t, "Diagnostics", "1000.00")
	order := f.order(t, f.client(t).ID, "", "")
	if _, err := f.orders.AttachServices(ctx, "manager-1", order.ID, AttachServicesRequest{Services: []AttachServiceItem{item(a.ID)}}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	logs, total, err := f.audit.GetAuditLogs(ctx, AuditListQuery{EntityType: "order", EntityID: order.ID})
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 order entries, got %d", total)
	}
	actions := map[string]string{}
	for _, l := range logs {
		actions[l.Action] = l.ActorID
	}
	if actions["CREATE_ORDER"] != "tester" || actions["ATTACH_SERVICES"] != "manager-1" {
		t.Fatalf("unexpected audit entries %+v", logs)
	}

	_, err = f.orders.AttachServices(ctx, "manager-1", order.ID, AttachServicesRequest{Services: []AttachServiceItem{item(a.ID)}})
	if err == nil {
		t.Fatal("expected re-attach to fail")
	}
	_, total, _ = f.audit.GetAuditLogs(ctx, AuditListQuery{EntityType: "order", EntityID: order.ID})
	if total != 2 {
		t.Fatalf("rejected attach was audited: %d entries", total)
	}
}
