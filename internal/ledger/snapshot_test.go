package ledger

import (
	"errors"
	"testing"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"

	"github.com/bwmarrin/snowflake"
)

func catalog() map[snowflake.ID]model.Service {
	return map[snowflake.ID]model.Service{
		1: {ID: 1, Name: "Diagnostics", Price: d("1000.00")},
		2: {ID: 2, Name: "Cleaning", Price: d("500.00")},
		3: {ID: 3, Name: "Soldering", Price: d("750.00")},
	}
}

func TestSnapshotCapturesCatalogPrice(t *testing.T) {
	got, err := SnapshotLines(9, nil, catalog(), []AttachRequest{{ServiceID: 1}, {ServiceID: 2, Price: dp("450.00")}}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	assertMoney(t, "catalog price", got[0].CapturedPrice, "1000.00")
	assertMoney(t, "explicit price", got[1].CapturedPrice, "450.00")
	for _, line := range got {
		if line.OrderID != 9 {
			t.Fatalf("line not bound to order: %+v", line)
		}
	}
}

func TestSnapshotIsolatedFromCatalogChanges(t *testing.T) {
	cat := catalog()
	got, err := SnapshotLines(9, nil, cat, []AttachRequest{{ServiceID: 1}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc := cat[1]
	svc.Price = d("9999.00")
	cat[1] = svc

	assertMoney(t, "captured", got[0].CapturedPrice, "1000.00")
}

func TestSnapshotRejections(t *testing.T) {
	existing := []model.OrderServiceLine{{OrderID: 9, ServiceID: 1, CapturedPrice: d("1000.00")}}

	tests := []struct {
		name     string
		existing []model.OrderServiceLine
		requests []AttachRequest
		limit    int
		sentinel error
		code     string
	}{
		{name: "empty batch", requests: nil, sentinel: apperror.ErrValidation, code: "empty_batch"},
		{name: "re-attach", existing: existing, requests: []AttachRequest{{ServiceID: 1}}, sentinel: apperror.ErrValidation, code: "service_already_attached"},
		{name: "duplicate in batch", requests: []AttachRequest{{ServiceID: 2}, {ServiceID: 2}}, sentinel: apperror.ErrValidation, code: "duplicate_service_in_batch"},
		{name: "unknown service", requests: []AttachRequest{{ServiceID: 2}, {ServiceID: 404}}, sentinel: apperror.ErrReferentialIntegrity, code: "service_not_found"},
		{name: "negative explicit price", requests: []AttachRequest{{ServiceID: 2, Price: dp("-1.00")}}, sentinel: apperror.ErrValidation, code: "negative_money"},
		{name: "explicit price too precise", requests: []AttachRequest{{ServiceID: 2, Price: dp("1.234")}}, sentinel: apperror.ErrValidation, code: "invalid_money_scale"},
		{name: "over the limit", existing: existing, requests: []AttachRequest{{ServiceID: 2}, {ServiceID: 3}}, limit: 2, sentinel: apperror.ErrValidation, code: "too_many_services"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SnapshotLines(9, tc.existing, catalog(), tc.requests, tc.limit)
			if got != nil {
				t.Fatalf("expected no lines on failure, got %v", got)
			}
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			appErr, _ := apperror.As(err)
			if appErr.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, appErr.Code)
			}
		})
	}
}

func TestSnapshotLimitCountsExistingLines(t *testing.T) {
	existing := []model.OrderServiceLine{{OrderID: 9, ServiceID: 1, CapturedPrice: d("1000.00")}}
	if _, err := SnapshotLines(9, existing, catalog(), []AttachRequest{{ServiceID: 2}}, 2); err != nil {
		t.Fatalf("limit reached exactly must be allowed: %v", err)
	}
}
