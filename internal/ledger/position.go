// Package ledger computes the financial position of repair orders.
//
// Every function here is pure: it reads only its arguments, never touches the
// store and never fails. Write-boundary validation (see package money) guarantees
// the inputs are well formed, so aggregation has no error path.
package ledger

import (
	"repairdesk/internal/model"

	"github.com/shopspring/decimal"
)

// Position is the derived money state of one order.
type Position struct {
	ServicesBaseTotal decimal.Decimal
	ServicesTotal     decimal.Decimal
	PurchasesTotal    decimal.Decimal
	TotalAmount       decimal.Decimal
	Advance           decimal.Decimal
	Paid              decimal.Decimal
	Duty              decimal.Decimal
	Overridden        bool
}

// ServicesBaseTotal sums the captured prices of the given lines.
func ServicesBaseTotal(lines []model.OrderServiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.CapturedPrice)
	}
	return total
}

// PurchasesTotal sums the cost of the given purchases.
func PurchasesTotal(purchases []model.Purchase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(p.Cost)
	}
	return total
}

// ServicesTotal is the override when one is set, otherwise the sum of captured line prices.
func ServicesTotal(o *model.Order) decimal.Decimal {
	if o.ServicesTotalOverride != nil {
		return *o.ServicesTotalOverride
	}
	return ServicesBaseTotal(o.ServiceLines)
}

// TotalAmount = services total + purchases total.
func TotalAmount(o *model.Order) decimal.Decimal {
	return ServicesTotal(o).Add(PurchasesTotal(o.Purchases))
}

// Duty is what the client still owes. Negative means overpayment.
func Duty(o *model.Order) decimal.Decimal {
	return TotalAmount(o).Sub(o.Advance).Sub(o.Paid)
}

// Compute derives the full position of o in one pass over its lines and purchases.
func Compute(o *model.Order) Position {
	base := ServicesBaseTotal(o.ServiceLines)
	services := base
	if o.ServicesTotalOverride != nil {
		services = *o.ServicesTotalOverride
	}
	purchases := PurchasesTotal(o.Purchases)
	total := services.Add(purchases)

	return Position{
		ServicesBaseTotal: base,
		ServicesTotal:     services,
		PurchasesTotal:    purchases,
		TotalAmount:       total,
		Advance:           o.Advance,
		Paid:              o.Paid,
		Duty:              total.Sub(o.Advance).Sub(o.Paid),
		Overridden:        o.ServicesTotalOverride != nil,
	}
}
