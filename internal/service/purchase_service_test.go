package service

import (
	"context"
	"errors"
	"testing"

	"repairdesk/internal/apperror"
)

func TestPurchaseService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)
	order := f.order(t, f.client(t).ID, "", "")

	tests := []struct {
		name string
		req  CreatePurchaseRequest
		kind apperror.Kind
		code string
	}{
		{
			name: "unknown order",
			req:  CreatePurchaseRequest{OrderID: "31337", Store: "Parts Co", Detail: "Screen", Cost: "10.00"},
			kind: apperror.KindReferentialIntegrity,
			code: "order_not_found",
		},
		{
			name: "negative cost",
			req:  CreatePurchaseRequest{OrderID: order.ID, Store: "Parts Co", Detail: "Screen", Cost: "-10.00"},
			kind: apperror.KindValidation,
			code: "negative_money",
		},
		{
			name: "malformed order id",
			req:  CreatePurchaseRequest{OrderID: "abc", Store: "Parts Co", Detail: "Screen", Cost: "10.00"},
			kind: apperror.KindValidation,
			code: "invalid_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.purchases.CreatePurchase(ctx, "tester", tt.req)
			assertKind(t, err, tt.kind, tt.code)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		p := f.purchase(t, order.ID, "1250.50")
		if p.Status != "awaiting_delivery" || p.Cost != "1250.50" {
			t.Fatalf("unexpected purchase %+v", p)
		}
		if p.OrderID == nil || *p.OrderID != order.ID || p.OrderNumber == nil || *p.OrderNumber != order.Number {
			t.Fatalf("order link missing: %+v", p)
		}
		names := f.events.names()
		if names[len(names)-1] != EventPurchaseCreated {
			t.Fatalf("unexpected events %v", names)
		}
	})
}

func TestPurchaseService_RelinkMovesCost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)
	client := f.client(t)
	first := f.order(t, client.ID, "", "")
	second := f.order(t, client.ID, "", "")
	p := f.purchase(t, first.ID, "700.00")

	if _, err := f.purchases.UpdatePurchase(ctx, "tester", p.ID, UpdatePurchaseRequest{
		OrderID: second.ID,
		Store:   p.Store,
		Detail:  p.Detail,
		Cost:    p.Cost,
		Status:  "received",
	}); err != nil {
		t.Fatalf("update purchase: %v", err)
	}

	a, _ := f.orders.GetOrder(ctx, first.ID)
	b, _ := f.orders.GetOrder(ctx, second.ID)
	if a.Position.PurchasesTotal != "0.00" || b.Position.PurchasesTotal != "700.00" {
		t.Fatalf("cost not moved: %s, %s", a.Position.PurchasesTotal, b.Position.PurchasesTotal)
	}

	unlinked, err := f.purchases.UpdatePurchase(ctx, "tester", p.ID, UpdatePurchaseRequest{
		Store:  p.Store,
		Detail: p.Detail,
		Cost:   p.Cost,
		Status: "installed",
	})
	if err != nil {
		t.Fatalf("unlink purchase: %v", err)
	}
	if unlinked.OrderID != nil || unlinked.Status != "installed" {
		t.Fatalf("unexpected purchase %+v", unlinked)
	}
}

func TestPurchaseService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)
	order := f.order(t, f.client(t).ID, "", "")
	linked := f.purchase(t, order.ID, "100.00")
	orphan := f.purchase(t, "", "50.00")

	t.Run("orphans", func(t *testing.T) {
		got, total, err := f.purchases.ListPurchases(ctx, PurchaseListQuery{OrphansOnly: true})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 1 || got[0].ID != orphan.ID || got[0].OrderID != nil {
			t.Fatalf("unexpected orphans %+v", got)
		}
	})

	t.Run("by order", func(t *testing.T) {
		got, total, err := f.purchases.ListPurchases(ctx, PurchaseListQuery{OrderID: order.ID})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 1 || got[0].ID != linked.ID {
			t.Fatalf("unexpected purchases %+v", got)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		_, _, err := f.purchases.ListPurchases(ctx, PurchaseListQuery{Status: "lost"})
		assertKind(t, err, apperror.KindValidation, "invalid_status")
	})

	t.Run("orphan does not change duty", func(t *testing.T) {
		got, err := f.orders.Duty(ctx, DutyQuery{})
		if err != nil {
			t.Fatalf("duty: %v", err)
		}
		if got.PurchasesTotal != "100.00" || got.Duty != "100.00" {
			t.Fatalf("orphan purchase leaked into duty: %+v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := f.purchases.DeletePurchase(ctx, "tester", linked.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := f.purchases.GetPurchase(ctx, linked.ID); !errors.Is(err, apperror.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		got, _ := f.orders.GetOrder(ctx, order.ID)
		if got.Position.Duty != "0.00" {
			t.Fatalf("deleted purchase still counted: %s", got.Position.Duty)
		}
	})
}
