package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/export"
)

type daySheetAvailability interface {
	ForDate(ctx context.Context, barberID, date string) (*models.DateAvailability, *models.AvailabilityResult, error)
}

type daySheetBookings interface {
	ListByBarberDate(ctx context.Context, barberID, date string) ([]models.Booking, error)
}

type daySheetBarbers interface {
	FindByID(ctx context.Context, id string) (*models.Barber, error)
}

// ExportFile is a rendered document ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var daySheetHeaders = []string{"time", "status", "customer", "phone", "service"}

// ExportService renders printable day sheets of a barber.
type ExportService struct {
	availability daySheetAvailability
	bookings     daySheetBookings
	barbers      daySheetBarbers
	logger       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(availability daySheetAvailability, bookings daySheetBookings, barbers daySheetBarbers, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{availability: availability, bookings: bookings, barbers: barbers, logger: logger}
}

// DaySheet renders the agenda of a barber on date in the requested format.
func (s *ExportService) DaySheet(ctx context.Context, barberID, date, format string, actor *models.JWTClaims) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv, pdf or xlsx")
	}
	barber, err := loadBarber(ctx, s.barbers, barberID)
	if err != nil {
		return nil, err
	}
	if err := authorizeBarber(actor, barber); err != nil {
		return nil, err
	}

	day, _, err := s.availability.ForDate(ctx, barberID, date)
	if err != nil {
		return nil, err
	}
	if day.Error {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, day.ErrorMessage)
	}
	bookings, err := s.bookings.ListByBarberDate(ctx, barberID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}

	dataset := buildDaySheet(barber, date, day.Slots, bookings)
	body, err := export.NewRenderer(f).Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render day sheet")
	}
	s.logger.Info("day sheet exported", zap.String("barber_id", barberID), zap.String("date", date), zap.String("format", string(f)))
	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", sanitizeFilename(barber.FullName), date, f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

func buildDaySheet(barber *models.Barber, date string, slots []models.SlotStatus, bookings []models.Booking) export.Dataset {
	byTime := make(map[string]models.Booking, len(bookings))
	for _, b := range bookings {
		if b.Occupies() {
			byTime[b.BookingTime] = b
		}
	}
	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		row := map[string]string{"time": slot.Time}
		switch {
		case slot.Available:
			row["status"] = "free"
		case slot.Reason == models.ReasonClosed:
			row["status"] = "closed"
		default:
			row["status"] = "booked"
		}
		if b, ok := byTime[slot.Time]; ok {
			row["status"] = string(b.Status)
			row["customer"] = b.CustomerName
			row["phone"] = b.CustomerPhone
			row["service"] = b.ServiceID
		}
		rows = append(rows, row)
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s %s", barber.FullName, date),
		Headers: daySheetHeaders,
		Rows:    rows,
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// todayIn returns the calendar date of now in loc.
func todayIn(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(dateLayout)
}

// slotStarted reports whether the slot of date, read as shop local time, is not after now.
func slotStarted(date, slot string, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(dateLayout+" 15:04", date+" "+slot, loc)
	if err != nil {
		return false
	}
	return !start.After(now)
}
