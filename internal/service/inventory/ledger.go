package inventory

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

const (
	// LowStockThreshold is the inclusive upper bound of the "Low Stock" band.
	LowStockThreshold = 5
	// DefaultAlertWindowDays is the expiration lookahead used when none is configured.
	DefaultAlertWindowDays = 7
)

var (
	// ErrInvalidRestock is returned for a non-positive quantity or a missing expiration date.
	ErrInvalidRestock = errors.New("restock requires a positive quantity and a valid expiration date")
	// ErrInvalidQuantity is returned when a sale quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrInsufficientStock is returned when batches cannot cover a sale.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports how much stock was available for a rejected sale.
type InsufficientStockError struct {
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %g, available %g", e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// TotalQuantity sums the batch quantities.
func TotalQuantity(batches []models.Batch) float64 {
	total := decimal.Zero
	for _, b := range batches {
		total = total.Add(decimal.NewFromFloat(b.Quantity))
	}
	return total.InexactFloat64()
}

// ComputeStatus derives the stock status from the total batch quantity.
func ComputeStatus(batches []models.Batch) models.StockStatus {
	return statusFor(TotalQuantity(batches))
}

func statusFor(total float64) models.StockStatus {
	switch {
	case total <= 0:
		return models.StatusOutOfStock
	case total <= LowStockThreshold:
		return models.StatusLowStock
	default:
		return models.StatusInStock
	}
}

// Refresh recomputes the derived quantity and status fields of an item.
func Refresh(item *models.StockItem) {
	item.TotalQuantity = TotalQuantity(item.Batches)
	item.Status = statusFor(item.TotalQuantity)
}

// DaysUntil is the number of calendar days between ref and exp as seen in loc.
// Expiration dates are stored as instants but mean a local calendar date, so both
// sides are reduced to their date in the café's timezone before subtracting.
func DaysUntil(exp, ref time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	ey, em, ed := exp.In(loc).Date()
	ry, rm, rd := ref.In(loc).Date()
	expDay := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	refDay := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	return int(expDay.Sub(refDay) / (24 * time.Hour))
}

// ExpirationAlerts returns the batches whose expiration is at most windowDays away,
// including every past-due batch, ordered by days left.
func ExpirationAlerts(batches []models.Batch, windowDays int, ref time.Time, loc *time.Location) []models.ExpirationAlert {
	var alerts []models.ExpirationAlert
	for _, b := range batches {
		daysLeft := DaysUntil(b.ExpirationDate, ref, loc)
		if daysLeft > windowDays {
			continue
		}
		alerts = append(alerts, models.ExpirationAlert{Batch: b, DaysLeft: daysLeft})
	}

	slices.SortStableFunc(alerts, func(a, b models.ExpirationAlert) int {
		return a.DaysLeft - b.DaysLeft
	})
	return alerts
}

// Deduction takes Quantity from the batch at Index of the original batch slice.
type Deduction struct {
	Index    int
	Quantity float64
}

// DepletionPlan is a fully satisfiable FIFO consumption of a batch list.
type DepletionPlan struct {
	Requested  float64
	Deductions []Deduction
}

// PlanDepletion walks the batches by ascending expiration date and plans how much to
// take from each. The input is not modified. When the batches cannot cover quantity
// an *InsufficientStockError is returned and no plan is produced.
func PlanDepletion(batches []models.Batch, quantity float64) (DepletionPlan, error) {
	if !(quantity > 0) || math.IsInf(quantity, 0) {
		return DepletionPlan{}, ErrInvalidQuantity
	}

	order := make([]int, len(batches))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return batches[a].ExpirationDate.Compare(batches[b].ExpirationDate)
	})

	requested := decimal.NewFromFloat(quantity)
	remaining := requested
	plan := DepletionPlan{Requested: quantity}

	for _, idx := range order {
		if !remaining.IsPositive() {
			break
		}
		available := decimal.NewFromFloat(batches[idx].Quantity)
		if !available.IsPositive() {
			continue
		}
		take := decimal.Min(available, remaining)
		plan.Deductions = append(plan.Deductions, Deduction{Index: idx, Quantity: take.InexactFloat64()})
		remaining = remaining.Sub(take)
	}

	if remaining.IsPositive() {
		return DepletionPlan{}, &InsufficientStockError{
			Requested: quantity,
			Available: requested.Sub(remaining).InexactFloat64(),
		}
	}
	return plan, nil
}

// ApplyPlan returns a new batch slice with the plan applied. Emptied batches are
// dropped and the remaining ones keep their insertion order.
func ApplyPlan(batches []models.Batch, plan DepletionPlan) []models.Batch {
	quantities := make([]decimal.Decimal, len(batches))
	for i, b := range batches {
		quantities[i] = decimal.NewFromFloat(b.Quantity)
	}
	for _, d := range plan.Deductions {
		quantities[d.Index] = quantities[d.Index].Sub(decimal.NewFromFloat(d.Quantity))
	}

	out := make([]models.Batch, 0, len(batches))
	for i, b := range batches {
		if !quantities[i].IsPositive() {
			continue
		}
		b.Quantity = quantities[i].InexactFloat64()
		out = append(out, b)
	}
	return out
}

// Restock appends a new batch to a copy of item.
func Restock(item models.StockItem, quantity float64, expiration, now time.Time) (models.StockItem, error) {
	if !(quantity > 0) || math.IsInf(quantity, 0) || expiration.IsZero() {
		return item, ErrInvalidRestock
	}

	item.Batches = append(slices.Clone(item.Batches), models.Batch{
		Quantity:       quantity,
		ExpirationDate: expiration,
		AddedAt:        now,
	})
	Refresh(&item)
	return item, nil
}

// Sell depletes quantity from a copy of item, first-expiring batch first. On error
// the returned item is the unchanged input.
func Sell(item models.StockItem, quantity float64) (models.StockItem, error) {
	plan, err := PlanDepletion(item.Batches, quantity)
	if err != nil {
		return item, err
	}

	item.Batches = ApplyPlan(item.Batches, plan)
	Refresh(&item)
	return item, nil
}
