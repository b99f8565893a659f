package service

import (
	"context"
	"errors"
	"testing"

	"repairdesk/internal/apperror"
)

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)

	tests := []struct {
		name    string
		req     CreateClientRequest
		kind    apperror.Kind
		wantErr bool
		legal   string
	}{
		{name: "defaults to organization", req: CreateClientRequest{Name: "Acme", Phone: "+79991112233", Company: "Acme LLC"}, legal: "organization"},
		{name: "organization without company", req: CreateClientRequest{Name: "Acme", Phone: "+79991112236"}, wantErr: true, kind: apperror.KindValidation},
		{name: "individual", req: CreateClientRequest{Name: "Ivan", Phone: "+79991112234", LegalKind: "individual"}, legal: "individual"},
		{name: "bad phone", req: CreateClientRequest{Name: "Ivan", Phone: "89991112233"}, wantErr: true, kind: apperror.KindValidation},
		{name: "blank name", req: CreateClientRequest{Name: "  ", Phone: "+79991112235"}, wantErr: true, kind: apperror.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.clients.CreateClient(ctx, "tester", tt.req)
			if tt.wantErr {
				assertKind(t, err, tt.kind, "")
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if got.LegalKind != tt.legal {
				t.Fatalf("legal kind = %s, want %s", got.LegalKind, tt.legal)
			}
		})
	}
}

func TestClientService_DuplicatePhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)
	existing := f.client(t)

	_, err := f.clients.CreateClient(ctx, "tester", CreateClientRequest{Name: "Twin", Phone: existing.Phone, LegalKind: "individual"})
	assertKind(t, err, apperror.KindValidation, "duplicate_phone")
}

func TestClientService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)
	a := f.service(t, "Diagnostics", "1000.00")
	client := f.client(t)
	keep := f.client(t)
	order := f.order(t, client.ID, "", "", item(a.ID))
	other := f.order(t, keep.ID, "", "", item(a.ID))
	p := f.purchase(t, order.ID, "300.00")

	if err := f.clients.DeleteClient(ctx, "tester", client.ID); err != nil {
		t.Fatalf("delete client: %v", err)
	}

	if _, err := f.clients.GetClient(ctx, client.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("client: expected not found, got %v", err)
	}
	if _, err := f.orders.GetOrder(ctx, order.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("order: expected not found, got %v", err)
	}
	purchase, err := f.purchases.GetPurchase(ctx, p.ID)
	if err != nil {
		t.Fatalf("purchase should survive: %v", err)
	}
	if purchase.OrderID != nil {
		t.Fatal("purchase still linked to a deleted order")
	}
	if got, err := f.orders.GetOrder(ctx, other.ID); err != nil || len(got.Services) != 1 {
		t.Fatalf("unrelated order touched: %v", err)
	}
	if err := f.clients.DeleteClient(ctx, "tester", client.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestClientService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultSettings)
	if _, err := f.clients.CreateClient(ctx, "tester", CreateClientRequest{Name: "Northwind Traders", Phone: "+79990001122", Company: "Northwind"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.client(t)

	got, total, err := f.clients.ListClients(ctx, ClientListQuery{Search: "northwind"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || got[0].Name != "Northwind Traders" {
		t.Fatalf("unexpected clients %+v", got)
	}

	all, total, err := f.clients.ListClients(ctx, ClientListQuery{LegalKind: "individual"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || all[0].LegalKind != "individual" {
		t.Fatalf("unexpected clients %+v", all)
	}
}
