package model

import (
	"testing"

	"repairdesk/internal/apperror"

	"github.com/shopspring/decimal"
)

func TestClientValidate(t *testing.T) {
	tests := []struct {
		name     string
		client   Client
		wantCode string
	}{
		{
			name:   "individual without company",
			client: Client{Name: "Ivan", Phone: "+79991234567", LegalKind: LegalKindIndividual},
		},
		{
			name:   "organization with company",
			client: Client{Name: "Olga", Phone: "+79991234568", LegalKind: LegalKindOrganization, Company: "Acme"},
		},
		{
			name:     "organization without company",
			client:   Client{Name: "Olga", Phone: "+79991234568", LegalKind: LegalKindOrganization, Company: "  "},
			wantCode: "company_required_for_organization",
		},
		{
			name:     "short phone",
			client:   Client{Name: "Ivan", Phone: "+7999123", LegalKind: LegalKindIndividual},
			wantCode: "invalid_phone",
		},
		{
			name:     "wrong country prefix",
			client:   Client{Name: "Ivan", Phone: "+19991234567", LegalKind: LegalKindIndividual},
			wantCode: "invalid_phone",
		},
		{
			name:     "unknown legal kind",
			client:   Client{Name: "Ivan", Phone: "+79991234567", LegalKind: "partnership"},
			wantCode: "invalid_legal_kind",
		},
		{
			name:     "blank name",
			client:   Client{Phone: "+79991234567", LegalKind: LegalKindIndividual},
			wantCode: "required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.client.Validate()
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			appErr, ok := apperror.As(err)
			if !ok || appErr.Code != tc.wantCode {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestOrderCode(t *testing.T) {
	o := Order{Number: 42}
	if got := o.Code("RO", 6); got != "RO-000042" {
		t.Fatalf("unexpected code %s", got)
	}
	if got := o.Code("", 3); got != "042" {
		t.Fatalf("unexpected code %s", got)
	}
	big := Order{Number: 1234567}
	if got := big.Code("RO", 4); got != "RO-1234567" {
		t.Fatalf("pad must not truncate, got %s", got)
	}
}

func TestOrderValidate(t *testing.T) {
	valid := func() Order {
		return Order{
			ClientID:          1,
			AcceptedEquipment: "Laptop",
			Detail:            "Does not boot",
			Status:            OrderStatusInProgress,
		}
	}

	if err := (func() *Order { o := valid(); return &o }()).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(o *Order)
		field  string
	}{
		{name: "blank equipment", mutate: func(o *Order) { o.AcceptedEquipment = " " }, field: "accepted_equipment"},
		{name: "blank detail", mutate: func(o *Order) { o.Detail = "" }, field: "detail"},
		{name: "negative advance", mutate: func(o *Order) { o.Advance = decimal.NewFromInt(-1) }, field: "advance"},
		{name: "three digit paid", mutate: func(o *Order) { o.Paid = decimal.RequireFromString("1.001") }, field: "paid"},
		{name: "negative override", mutate: func(o *Order) {
			v := decimal.NewFromInt(-5)
			o.ServicesTotalOverride = &v
		}, field: "services_total_override"},
		{name: "unknown status", mutate: func(o *Order) { o.Status = "lost" }, field: "status"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := valid()
			tc.mutate(&o)
			appErr, ok := apperror.As(o.Validate())
			if !ok || appErr.Field != tc.field {
				t.Fatalf("expected error on %s, got %v", tc.field, appErr)
			}
		})
	}
}

func TestPurchaseValidate(t *testing.T) {
	p := Purchase{Store: "Parts Co", Detail: "SSD 512", Cost: decimal.RequireFromString("49.90"), Status: PurchaseStatusAwaitingDelivery}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Status = "lost"
	if err := p.Validate(); err == nil {
		t.Fatalf("expected status error")
	}
}
