package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

func TestExportServiceDaySheetCSV(t *testing.T) {
	f := newAvailabilityFixture(nil)
	f.bookings.occupied["fabio|2025-06-02"] = []string{"09:30"}
	bookings := &bookingStoreStub{bookings: map[string]*models.Booking{
		"bk-1": {ID: "bk-1", BarberID: "fabio", CustomerName: "Anna", CustomerPhone: "333", BookingDate: "2025-06-02", BookingTime: "09:30", ServiceID: "svc-1", Status: models.BookingConfirmed},
	}}
	svc := NewExportService(f.svc, bookings, f.barbers, nil)

	file, err := svc.DaySheet(context.Background(), "fabio", "2025-06-02", "csv", fabioActor)
	require.NoError(t, err)
	assert.Equal(t, "fabio_2025-06-02.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 15)
	assert.Equal(t, []string{"time", "status", "customer", "phone", "service"}, records[0])
	assert.Equal(t, []string{"09:00", "free", "", "", ""}, records[1])
	assert.Equal(t, []string{"09:30", "confirmed", "Anna", "333", "svc-1"}, records[2])
}

func TestExportServiceDaySheetRejections(t *testing.T) {
	f := newAvailabilityFixture(nil)
	svc := NewExportService(f.svc, &bookingStoreStub{bookings: map[string]*models.Booking{}}, f.barbers, nil)
	ctx := context.Background()

	_, err := svc.DaySheet(ctx, "fabio", "2025-06-02", "docx", fabioActor)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.DaySheet(ctx, "fabio", "2025-06-02", "pdf", micheleActor)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.DaySheet(ctx, "ghost", "2025-06-02", "pdf", adminActor)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	file, err := svc.DaySheet(ctx, "fabio", "2025-06-02", "pdf", adminActor)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}
