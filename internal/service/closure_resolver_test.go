package service

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/barbershop-api/internal/models"
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return d
}

func adhoc(types ...models.ClosureType) []models.BarberClosure {
	rows := make([]models.BarberClosure, len(types))
	for i, ct := range types {
		rows[i] = models.BarberClosure{BarberEmail: "fabio@shop.test", ClosureType: ct}
	}
	return rows
}

func TestResolveClosureShopDominates(t *testing.T) {
	shop := &models.ClosureSettings{ClosedDays: pq.Int64Array{0}, ClosedDates: pq.StringArray{"2025-12-25"}}

	christmas := mustDate(t, "2025-12-25")
	assert.Equal(t, models.VerdictClosedFull, ResolveClosure(christmas, shop, nil, nil))
	assert.Equal(t, models.VerdictClosedFull, ResolveClosure(christmas, shop, nil, adhoc(models.ClosureMorning)))

	sunday := mustDate(t, "2025-03-02")
	assert.Equal(t, models.VerdictClosedFull, ResolveClosure(sunday, shop, []int64{}, adhoc(models.ClosureAfternoon)))
}

func TestResolveClosureAdhocOverridesRecurring(t *testing.T) {
	monday := mustDate(t, "2025-03-03")
	recurring := []int64{1}

	assert.Equal(t, models.VerdictClosedFull, ResolveClosure(monday, nil, recurring, nil))
	assert.Equal(t, models.VerdictClosedMorning, ResolveClosure(monday, nil, recurring, adhoc(models.ClosureMorning)))
	assert.Equal(t, models.VerdictClosedAfternoon, ResolveClosure(monday, nil, nil, adhoc(models.ClosureAfternoon)))
}

func TestResolveClosureMergesAdhocRows(t *testing.T) {
	monday := mustDate(t, "2025-03-03")

	assert.Equal(t, models.VerdictClosedFull, ResolveClosure(monday, nil, nil, adhoc(models.ClosureMorning, models.ClosureAfternoon)))
	assert.Equal(t, models.VerdictClosedFull, ResolveClosure(monday, nil, nil, adhoc(models.ClosureAfternoon, models.ClosureMorning)))
	assert.Equal(t, models.VerdictClosedMorning, ResolveClosure(monday, nil, nil, adhoc(models.ClosureMorning, models.ClosureMorning)))
	assert.Equal(t, models.VerdictClosedFull, ResolveClosure(monday, nil, nil, adhoc(models.ClosureFull, models.ClosureFull)))
	assert.Equal(t, models.VerdictClosedFull, ResolveClosure(monday, nil, nil, adhoc(models.ClosureMorning, models.ClosureFull)))
}

func TestResolveClosureOpen(t *testing.T) {
	shop := &models.ClosureSettings{ClosedDays: pq.Int64Array{0}}
	assert.Equal(t, models.VerdictOpen, ResolveClosure(mustDate(t, "2025-03-04"), shop, []int64{1}, nil))
	assert.False(t, ShopClosed(mustDate(t, "2025-03-04"), shop))
	assert.True(t, ShopClosed(mustDate(t, "2025-03-02"), shop))
}
