package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type bookingStoreStub struct {
	bookings  map[string]*models.Booking
	createErr error
	created   []*models.Booking
	updated   []string
}

func (s *bookingStoreStub) Create(ctx context.Context, booking *models.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	booking.ID = "bk-new"
	s.created = append(s.created, booking)
	return nil
}

func (s *bookingStoreStub) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := s.bookings[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *bookingStoreStub) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	s.updated = append(s.updated, id+":"+string(status))
	return nil
}

func (s *bookingStoreStub) ListByBarberDate(ctx context.Context, barberID, date string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.BarberID == barberID && b.BookingDate == date {
			out = append(out, *b)
		}
	}
	return out, nil
}

type catalogStub struct{}

func (catalogStub) FindByID(ctx context.Context, id string) (*models.Service, error) {
	if id == "svc-1" {
		return &models.Service{ID: id, Name: "Taglio", DurationMinutes: 30, Active: true}, nil
	}
	return nil, sql.ErrNoRows
}

type slotCheckerStub struct {
	available   bool
	err         error
	invalidated []string
}

func (s *slotCheckerStub) SlotAvailable(ctx context.Context, barberID, date, slot string) (bool, error) {
	return s.available, s.err
}

func (s *slotCheckerStub) Invalidate(ctx context.Context, barberID string) {
	s.invalidated = append(s.invalidated, barberID)
}

type slotFreedRecorder struct {
	freed []string
}

func (r *slotFreedRecorder) SlotFreed(ctx context.Context, barberID, date, slot string) error {
	r.freed = append(r.freed, barberID+"|"+date+"|"+slot)
	return nil
}

type bookingFixture struct {
	svc      *BookingService
	store    *bookingStoreStub
	slots    *slotCheckerStub
	waitlist *slotFreedRecorder
}

func newBookingFixture() *bookingFixture {
	store := &bookingStoreStub{bookings: map[string]*models.Booking{
		"bk-1": {ID: "bk-1", BarberID: "fabio", CustomerEmail: "anna@mail.test", BookingDate: "2025-06-02", BookingTime: "10:00", ServiceID: "svc-1", Status: models.BookingConfirmed},
	}}
	barbers := &barberStoreStub{barbers: map[string]*models.Barber{
		"fabio":   {ID: "fabio", Email: "fabio@shop.test", Active: true},
		"retired": {ID: "retired", Email: "retired@shop.test", Active: false},
	}}
	slots := &slotCheckerStub{available: true}
	waitlist := &slotFreedRecorder{}
	svc := NewBookingService(BookingServiceParams{
		Store:        store,
		Barbers:      barbers,
		Catalog:      catalogStub{},
		Availability: slots,
		Waitlist:     waitlist,
	})
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return &bookingFixture{svc: svc, store: store, slots: slots, waitlist: waitlist}
}

func bookingRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		BarberID:      "fabio",
		ServiceID:     "svc-1",
		Date:          "2025-06-02",
		Time:          "10:30",
		CustomerName:  " Luca ",
		CustomerEmail: "Luca@Mail.test",
	}
}

func customer(email string) *models.JWTClaims {
	return &models.JWTClaims{Email: email, Role: models.RoleCustomer}
}

func TestBookingServiceCreate(t *testing.T) {
	f := newBookingFixture()

	booking, err := f.svc.Create(context.Background(), bookingRequest(), customer("luca@mail.test"))
	require.NoError(t, err)
	assert.Equal(t, "bk-new", booking.ID)
	assert.Equal(t, "Luca", booking.CustomerName)
	assert.Equal(t, "luca@mail.test", booking.CustomerEmail)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.Equal(t, []string{"fabio"}, f.slots.invalidated)
}

func TestBookingServiceCreateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.CreateBookingRequest, *bookingFixture)
		code   *appErrors.Error
	}{
		{"past date", func(r *dto.CreateBookingRequest, _ *bookingFixture) { r.Date = "2025-05-30" }, appErrors.ErrValidation},
		{"not a slot", func(r *dto.CreateBookingRequest, _ *bookingFixture) { r.Time = "13:00" }, appErrors.ErrValidation},
		{"sunday", func(r *dto.CreateBookingRequest, _ *bookingFixture) { r.Date = "2025-06-08" }, appErrors.ErrValidation},
		{"unknown barber", func(r *dto.CreateBookingRequest, _ *bookingFixture) { r.BarberID = "ghost" }, appErrors.ErrNotFound},
		{"inactive barber", func(r *dto.CreateBookingRequest, _ *bookingFixture) { r.BarberID = "retired" }, appErrors.ErrSlotUnavailable},
		{"unknown service", func(r *dto.CreateBookingRequest, _ *bookingFixture) { r.ServiceID = "svc-9" }, appErrors.ErrValidation},
		{"slot taken", func(_ *dto.CreateBookingRequest, f *bookingFixture) { f.slots.available = false }, appErrors.ErrSlotUnavailable},
		{"lost race", func(_ *dto.CreateBookingRequest, f *bookingFixture) {
			f.store.createErr = &pq.Error{Code: "23505"}
		}, appErrors.ErrSlotUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture()
			req := bookingRequest()
			tc.mutate(&req, f)
			_, err := f.svc.Create(context.Background(), req, nil)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, tc.code), "got %v", err)
			assert.Empty(t, f.store.created)
		})
	}
}

func TestBookingServiceCreateRejectsStartedSlotsToday(t *testing.T) {
	f := newBookingFixture()
	rome := time.FixedZone("CEST", 2*60*60)
	f.svc.loc = rome
	f.svc.now = func() time.Time { return time.Date(2025, 6, 2, 16, 0, 0, 0, rome) }

	req := bookingRequest()
	req.Time = "09:00"
	_, err := f.svc.Create(context.Background(), req, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "got %v", err)

	req.Time = "16:00"
	_, err = f.svc.Create(context.Background(), req, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "got %v", err)
	assert.Empty(t, f.store.created)

	req.Time = "17:00"
	booking, err := f.svc.Create(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "17:00", booking.BookingTime)
}

func TestSlotStarted(t *testing.T) {
	now := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	assert.True(t, slotStarted("2025-06-02", "09:00", now, nil))
	assert.False(t, slotStarted("2025-06-02", "15:00", now, nil))
	assert.False(t, slotStarted("2025-06-03", "09:00", now, nil))
	assert.False(t, slotStarted("2025-06-02", "bogus", now, nil))
}

func TestBookingServiceCancelOffersSlotToWaitlist(t *testing.T) {
	f := newBookingFixture()

	booking, err := f.svc.Cancel(context.Background(), "bk-1", customer("anna@mail.test"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, booking.Status)
	assert.Equal(t, []string{"bk-1:cancelled"}, f.store.updated)
	assert.Equal(t, []string{"fabio|2025-06-02|10:00"}, f.waitlist.freed)
	assert.Equal(t, []string{"fabio"}, f.slots.invalidated)
}

func TestBookingServiceCancelIsIdempotent(t *testing.T) {
	f := newBookingFixture()
	f.store.bookings["bk-1"].Status = models.BookingCancelled

	_, err := f.svc.Cancel(context.Background(), "bk-1", customer("anna@mail.test"))
	require.NoError(t, err)
	assert.Empty(t, f.store.updated)
	assert.Empty(t, f.waitlist.freed)
}

func TestBookingServiceAccessControl(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	_, err := f.svc.Get(ctx, "bk-1", customer("someone@mail.test"))
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Get(ctx, "bk-1", &models.JWTClaims{Email: "fabio@shop.test", Role: models.RoleBarber})
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, "missing", customer("anna@mail.test"))
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.ListForBarber(ctx, "fabio", "2025-06-02", customer("anna@mail.test"))
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	list, err := f.svc.ListForBarber(ctx, "fabio", "2025-06-02", &models.JWTClaims{Email: "boss@shop.test", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
