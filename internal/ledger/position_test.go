package ledger

import (
	"testing"

	"repairdesk/internal/model"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func lines(prices ...string) []model.OrderServiceLine {
	out := make([]model.OrderServiceLine, 0, len(prices))
	for i, p := range prices {
		out = append(out, model.OrderServiceLine{ServiceID: 100 + snowflakeID(i), CapturedPrice: d(p)})
	}
	return out
}

func purchases(costs ...string) []model.Purchase {
	out := make([]model.Purchase, 0, len(costs))
	for _, c := range costs {
		out = append(out, model.Purchase{Cost: d(c), Status: model.PurchaseStatusReceived})
	}
	return out
}

func assertMoney(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if got.StringFixed(2) != want {
		t.Fatalf("%s: expected %s, got %s", label, want, got.StringFixed(2))
	}
}

func TestEmptyOrder(t *testing.T) {
	o := &model.Order{Advance: d("150.00"), Paid: d("50.00")}

	p := Compute(o)
	assertMoney(t, "services_total", p.ServicesTotal, "0.00")
	assertMoney(t, "purchases_total", p.PurchasesTotal, "0.00")
	assertMoney(t, "total_amount", p.TotalAmount, "0.00")
	assertMoney(t, "duty", p.Duty, "-200.00")
	assertMoney(t, "Duty()", Duty(o), "-200.00")
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name           string
		order          model.Order
		servicesTotal  string
		purchasesTotal string
		totalAmount    string
		duty           string
	}{
		{
			name: "services, purchases and advance",
			order: model.Order{
				ServiceLines: lines("1000.00", "500.00"),
				Purchases:    purchases("5000.00", "4000.00"),
				Advance:      d("300.00"),
			},
			servicesTotal: "1500.00", purchasesTotal: "9000.00", totalAmount: "10500.00", duty: "10200.00",
		},
		{
			name: "paid updated after creation",
			order: model.Order{
				ServiceLines: lines("1000.00", "500.00"),
				Purchases:    purchases("5000.00", "4000.00"),
				Advance:      d("300.00"),
				Paid:         d("1800.00"),
			},
			servicesTotal: "1500.00", purchasesTotal: "9000.00", totalAmount: "10500.00", duty: "8400.00",
		},
		{
			name: "single service partially paid",
			order: model.Order{
				ServiceLines: lines("1000.00"),
				Paid:         d("200.00"),
			},
			servicesTotal: "1000.00", purchasesTotal: "0.00", totalAmount: "1000.00", duty: "800.00",
		},
		{
			name: "overpayment gives negative duty",
			order: model.Order{
				ServiceLines: lines("100.00"),
				Advance:      d("150.00"),
			},
			servicesTotal: "100.00", purchasesTotal: "0.00", totalAmount: "100.00", duty: "-50.00",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := tc.order
			assertMoney(t, "services_total", ServicesTotal(&o), tc.servicesTotal)
			assertMoney(t, "purchases_total", PurchasesTotal(o.Purchases), tc.purchasesTotal)
			assertMoney(t, "total_amount", TotalAmount(&o), tc.totalAmount)
			assertMoney(t, "duty", Duty(&o), tc.duty)

			p := Compute(&o)
			assertMoney(t, "position.duty", p.Duty, tc.duty)
			assertMoney(t, "position.total_amount", p.TotalAmount, tc.totalAmount)
		})
	}
}

func TestOverridePrecedence(t *testing.T) {
	o := &model.Order{
		ServiceLines: lines("1000.00", "500.00"),
		Purchases:    purchases("200.00"),
	}

	o.ServicesTotalOverride = dp("700.00")
	p := Compute(o)
	if !p.Overridden {
		t.Fatalf("expected overridden position")
	}
	assertMoney(t, "override wins", p.ServicesTotal, "700.00")
	assertMoney(t, "base still visible", p.ServicesBaseTotal, "1500.00")
	assertMoney(t, "duty", p.Duty, "900.00")

	o.ServicesTotalOverride = dp("0.00")
	assertMoney(t, "zero override still wins", ServicesTotal(o), "0.00")

	empty := &model.Order{ServicesTotalOverride: dp("250.00")}
	assertMoney(t, "override without lines", ServicesTotal(empty), "250.00")

	o.ServicesTotalOverride = nil
	assertMoney(t, "cleared override", ServicesTotal(o), "1500.00")
	if Compute(o).Overridden {
		t.Fatalf("expected computed position after clearing override")
	}
}

func TestArithmeticIsExact(t *testing.T) {
	o := &model.Order{ServiceLines: lines("0.10", "0.20")}
	if !ServicesTotal(o).Equal(d("0.30")) {
		t.Fatalf("expected exact 0.30, got %s", ServicesTotal(o))
	}
}
