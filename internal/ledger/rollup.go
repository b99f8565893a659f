package ledger

import (
	"repairdesk/internal/model"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RollupDuty sums the duty of every order in a single pass. Orders must come
// with their lines and purchases preloaded.
func RollupDuty(orders []model.Order) decimal.Decimal {
	total := decimal.Zero
	for i := range orders {
		total = total.Add(Duty(&orders[i]))
	}
	return total
}

// Summary aggregates positions over a set of orders.
type Summary struct {
	Orders         int
	ServicesTotal  decimal.Decimal
	PurchasesTotal decimal.Decimal
	TotalAmount    decimal.Decimal
	Advance        decimal.Decimal
	Paid           decimal.Decimal
	Duty           decimal.Decimal
}

// Add folds one position into the summary.
func (s Summary) Add(p Position) Summary {
	s.Orders++
	s.ServicesTotal = s.ServicesTotal.Add(p.ServicesTotal)
	s.PurchasesTotal = s.PurchasesTotal.Add(p.PurchasesTotal)
	s.TotalAmount = s.TotalAmount.Add(p.TotalAmount)
	s.Advance = s.Advance.Add(p.Advance)
	s.Paid = s.Paid.Add(p.Paid)
	s.Duty = s.Duty.Add(p.Duty)
	return s
}

// Merge combines two summaries of disjoint order sets.
func (s Summary) Merge(other Summary) Summary {
	return Summary{
		Orders:         s.Orders + other.Orders,
		ServicesTotal:  s.ServicesTotal.Add(other.ServicesTotal),
		PurchasesTotal: s.PurchasesTotal.Add(other.PurchasesTotal),
		TotalAmount:    s.TotalAmount.Add(other.TotalAmount),
		Advance:        s.Advance.Add(other.Advance),
		Paid:           s.Paid.Add(other.Paid),
		Duty:           s.Duty.Add(other.Duty),
	}
}

// Summarize computes a Summary in one pass.
func Summarize(orders []model.Order) Summary {
	s := zeroSummary()
	for i := range orders {
		s = s.Add(Compute(&orders[i]))
	}
	return s
}

// RollupByClient groups the duty of each order by its client.
func RollupByClient(orders []model.Order) map[snowflake.ID]decimal.Decimal {
	out := make(map[snowflake.ID]decimal.Decimal)
	for i := range orders {
		o := &orders[i]
		out[o.ClientID] = out[o.ClientID].Add(Duty(o))
	}
	return out
}

func zeroSummary() Summary {
	return Summary{
		ServicesTotal:  decimal.Zero,
		PurchasesTotal: decimal.Zero,
		TotalAmount:    decimal.Zero,
		Advance:        decimal.Zero,
		Paid:           decimal.Zero,
		Duty:           decimal.Zero,
	}
}
