package ledger

import (
	"math/rand"
	"testing"

	"repairdesk/internal/model"

	"github.com/bwmarrin/snowflake"
)

func snowflakeID(i int) snowflake.ID { return snowflake.ID(i) }

func sampleOrders() []model.Order {
	return []model.Order{
		{
			ID: 1, ClientID: 10,
			ServiceLines: lines("1000.00", "500.00"),
			Purchases:    purchases("5000.00", "4000.00"),
			Advance:      d("300.00"),
		},
		{
			ID: 2, ClientID: 10,
			ServiceLines: lines("2000.00"),
			Paid:         d("200.00"),
		},
		{
			ID: 3, ClientID: 20,
			ServiceLines:          lines("10.00"),
			ServicesTotalOverride: dp("99.99"),
			Advance:               d("0.99"),
		},
		{
			ID: 4, ClientID: 20,
			Advance: d("50.00"),
		},
	}
}

func TestClientTotalDuty(t *testing.T) {
	orders := sampleOrders()[:2]
	// 10200.00 + 1800.00
	assertMoney(t, "client total", RollupDuty(orders), "12000.00")

	byClient := RollupByClient(sampleOrders())
	assertMoney(t, "client 10", byClient[10], "12000.00")
	assertMoney(t, "client 20", byClient[20], "49.00")
}

func TestRollupEmpty(t *testing.T) {
	assertMoney(t, "empty", RollupDuty(nil), "0.00")
	s := Summarize(nil)
	if s.Orders != 0 {
		t.Fatalf("expected no orders, got %d", s.Orders)
	}
	assertMoney(t, "empty summary duty", s.Duty, "0.00")
}

func TestRollupDecomposable(t *testing.T) {
	all := sampleOrders()
	whole := RollupDuty(all)

	for split := 0; split <= len(all); split++ {
		a, b := all[:split], all[split:]
		if got := RollupDuty(a).Add(RollupDuty(b)); !got.Equal(whole) {
			t.Fatalf("split %d: %s + ... = %s, want %s", split, RollupDuty(a), got, whole)
		}
		merged := Summarize(a).Merge(Summarize(b))
		if !merged.Duty.Equal(whole) || merged.Orders != len(all) {
			t.Fatalf("split %d: merged summary %+v", split, merged)
		}
	}
}

func TestRollupOrderIndependent(t *testing.T) {
	all := sampleOrders()
	want := RollupDuty(all)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.Order(nil), all...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if got := RollupDuty(shuffled); !got.Equal(want) {
			t.Fatalf("shuffle %d: got %s, want %s", i, got, want)
		}
	}
}
