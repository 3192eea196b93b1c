package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStatusThresholds(t *testing.T) {
	cases := []struct {
		quantities []float64
		expected   models.StockStatus
	}{
		{nil, models.StatusOutOfStock},
		{[]float64{0}, models.StatusOutOfStock},
		{[]float64{2, 3}, models.StatusLowStock},
		{[]float64{5}, models.StatusLowStock},
		{[]float64{6}, models.StatusInStock},
		{[]float64{0.5, 5}, models.StatusInStock},
	}

	for _, tc := range cases {
		var batches []models.Batch
		for _, q := range tc.quantities {
			batches = append(batches, models.Batch{Quantity: q})
		}
		if got := ComputeStatus(batches); got != tc.expected {
			t.Fatalf("quantities %v: expected %q, got %q", tc.quantities, tc.expected, got)
		}
	}
}

func TestSellDepletesEarliestExpirationFirst(t *testing.T) {
	item := models.StockItem{Batches: []models.Batch{
		{Quantity: 3, ExpirationDate: date(2025, 1, 10)},
		{Quantity: 5, ExpirationDate: date(2025, 1, 5)},
	}}

	updated, err := Sell(item, 6)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if len(updated.Batches) != 1 {
		t.Fatalf("expected one remaining batch, got %+v", updated.Batches)
	}
	remaining := updated.Batches[0]
	if remaining.Quantity != 2 || !remaining.ExpirationDate.Equal(date(2025, 1, 10)) {
		t.Fatalf("unexpected remaining batch %+v", remaining)
	}
	if updated.TotalQuantity != 2 || updated.Status != models.StatusLowStock {
		t.Fatalf("derived fields not refreshed: total=%v status=%q", updated.TotalQuantity, updated.Status)
	}
	if item.Batches[0].Quantity != 3 || item.Batches[1].Quantity != 5 {
		t.Fatalf("input batches mutated: %+v", item.Batches)
	}
}

func TestSellInsufficientStockLeavesItemUnchanged(t *testing.T) {
	item := models.StockItem{Batches: []models.Batch{
		{Quantity: 3, ExpirationDate: date(2025, 1, 10)},
		{Quantity: 5, ExpirationDate: date(2025, 1, 5)},
	}}

	updated, err := Sell(item, 9)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) || insufficient.Available != 8 || insufficient.Requested != 9 {
		t.Fatalf("expected available 8 of 9, got %+v", insufficient)
	}
	if len(updated.Batches) != 2 || updated.Batches[0].Quantity != 3 || updated.Batches[1].Quantity != 5 {
		t.Fatalf("batches changed on failure: %+v", updated.Batches)
	}
}

func TestSellRejectsNonPositiveQuantity(t *testing.T) {
	item := models.StockItem{Batches: []models.Batch{{Quantity: 3, ExpirationDate: date(2025, 1, 10)}}}
	for _, qty := range []float64{0, -1} {
		if _, err := Sell(item, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %v: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestSellExactTotalEmptiesItem(t *testing.T) {
	item := models.StockItem{Batches: []models.Batch{
		{Quantity: 1.5, ExpirationDate: date(2025, 2, 1)},
		{Quantity: 2.25, ExpirationDate: date(2025, 1, 1)},
	}}

	updated, err := Sell(item, 3.75)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if len(updated.Batches) != 0 || updated.Status != models.StatusOutOfStock {
		t.Fatalf("expected empty out-of-stock item, got %+v", updated)
	}
}

func TestRestockValidation(t *testing.T) {
	item := models.StockItem{}
	now := date(2025, 1, 1)

	if _, err := Restock(item, 0, date(2025, 2, 1), now); !errors.Is(err, ErrInvalidRestock) {
		t.Fatalf("zero quantity: expected ErrInvalidRestock, got %v", err)
	}
	if _, err := Restock(item, 4, time.Time{}, now); !errors.Is(err, ErrInvalidRestock) {
		t.Fatalf("missing expiration: expected ErrInvalidRestock, got %v", err)
	}

	updated, err := Restock(item, 4, date(2025, 2, 1), now)
	if err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if len(updated.Batches) != 1 || !updated.Batches[0].AddedAt.Equal(now) || updated.Status != models.StatusLowStock {
		t.Fatalf("unexpected restocked item %+v", updated)
	}
}

func TestRestockThenSellRoundTrip(t *testing.T) {
	original := models.StockItem{Batches: []models.Batch{
		{Quantity: 10, ExpirationDate: date(2025, 3, 1)},
		{Quantity: 4, ExpirationDate: date(2025, 4, 1)},
	}}
	Refresh(&original)

	restocked, err := Restock(original, 7, date(2025, 2, 1), date(2025, 1, 15))
	if err != nil {
		t.Fatalf("Restock: %v", err)
	}
	sold, err := Sell(restocked, 7)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}

	if len(sold.Batches) != len(original.Batches) {
		t.Fatalf("expected %d batches, got %+v", len(original.Batches), sold.Batches)
	}
	for i := range original.Batches {
		if sold.Batches[i] != original.Batches[i] {
			t.Fatalf("batch %d differs: %+v vs %+v", i, sold.Batches[i], original.Batches[i])
		}
	}
	if sold.TotalQuantity != original.TotalQuantity || sold.Status != original.Status {
		t.Fatalf("derived fields differ: %+v vs %+v", sold, original)
	}
}

func TestExpirationAlertsWindow(t *testing.T) {
	ref := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)
	batches := []models.Batch{
		{Quantity: 1, ExpirationDate: date(2025, 1, 25)},
		{Quantity: 2, ExpirationDate: date(2025, 1, 17)},
		{Quantity: 3, ExpirationDate: date(2025, 1, 18)},
		{Quantity: 4, ExpirationDate: date(2024, 12, 1)},
		{Quantity: 5, ExpirationDate: date(2025, 1, 10)},
	}

	alerts := ExpirationAlerts(batches, DefaultAlertWindowDays, ref, time.UTC)
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %+v", alerts)
	}
	expected := []struct {
		qty  float64
		days int
	}{{4, -40}, {5, 0}, {2, 7}}
	for i, e := range expected {
		if alerts[i].Quantity != e.qty || alerts[i].DaysLeft != e.days {
			t.Fatalf("alert %d: expected qty %v days %d, got %+v", i, e.qty, e.days, alerts[i])
		}
	}
}

func TestDaysUntilUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)

	// 2025-01-05 in UTC+7 stored as the previous evening in UTC.
	exp := time.Date(2025, 1, 4, 17, 0, 0, 0, time.UTC)
	// 23:30 local on 2025-01-04.
	ref := time.Date(2025, 1, 4, 16, 30, 0, 0, time.UTC)

	if got := DaysUntil(exp, ref, loc); got != 1 {
		t.Fatalf("expected 1 day in local calendar, got %d", got)
	}
	if got := DaysUntil(exp, ref, time.UTC); got != 0 {
		t.Fatalf("expected 0 days in UTC, got %d", got)
	}
}
