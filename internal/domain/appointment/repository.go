package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

var (
	// ErrRecordNotFound is returned by stores for missing rows.
	ErrRecordNotFound = errors.New("record not found")

	// ErrSlotTaken is returned when the store's own uniqueness or
	// overlap constraint rejects an appointment insert.
	ErrSlotTaken = errors.New("slot already taken")
)

// ClientCounter bumps a client's completed-appointments counter.
type ClientCounter interface {
	IncrementClientCompletions(ctx context.Context, clientID uint) error
}

// Repository is the schedule store. Implementations must make every
// call made inside WithinTx part of a single transaction.
type Repository interface {
	ClientCounter

	// -------- Catalog --------
	GetService(
		ctx context.Context,
		serviceID uint,
	) (*models.Service, error)

	// MinServiceDuration returns 0 when no active service exists.
	MinServiceDuration(ctx context.Context) (int, error)

	ListServices(
		ctx context.Context,
		category string,
	) ([]models.Service, error)

	CreateService(
		ctx context.Context,
		svc *models.Service,
	) error

	// -------- Barber / working hours --------
	GetBarber(
		ctx context.Context,
		barberID uint,
	) (*models.Barber, error)

	GetWorkingHours(
		ctx context.Context,
		barberID uint,
		weekday Weekday,
	) (*models.WorkingHours, error)

	ListWorkingHours(
		ctx context.Context,
		barberID uint,
	) ([]models.WorkingHours, error)

	ReplaceWorkingHours(
		ctx context.Context,
		barberID uint,
		hours []models.WorkingHours,
	) error

	// -------- Client --------
	GetClient(
		ctx context.Context,
		clientID uint,
	) (*models.Client, error)

	// -------- Appointment (create / conflict) --------

	// LockDay serializes writers of one (barber, date) until the
	// surrounding transaction ends.
	LockDay(
		ctx context.Context,
		barberID uint,
		date string,
	) error

	// ListActiveAppointments returns pending and confirmed appointments
	// ordered by start, with Client loaded.
	ListActiveAppointments(
		ctx context.Context,
		barberID uint,
		date string,
	) ([]models.Appointment, error)

	ListBlocks(
		ctx context.Context,
		barberID uint,
		date string,
	) ([]models.ScheduleBlock, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		appointmentID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Blocks --------
	CreateBlock(
		ctx context.Context,
		b *models.ScheduleBlock,
	) error

	GetBlock(
		ctx context.Context,
		blockID uint,
	) (*models.ScheduleBlock, error)

	DeleteBlock(
		ctx context.Context,
		blockID uint,
	) error

	// -------- Listing --------
	ListAppointmentsForPeriod(
		ctx context.Context,
		barberID uint,
		fromDate string,
		toDate string,
	) ([]models.Appointment, error)

	ListAppointmentsForClient(
		ctx context.Context,
		clientID uint,
	) ([]models.Appointment, error)

	// ListActiveAppointmentsOn returns every barber's active appointments
	// on date with Client, Barber and Service loaded.
	ListActiveAppointmentsOn(
		ctx context.Context,
		date string,
	) ([]models.Appointment, error)

	// -------- Reconciliation --------

	// ListElapsed returns active appointments that ended at or before
	// (today, nowMinute).
	ListElapsed(
		ctx context.Context,
		today string,
		nowMinute int,
		limit int,
	) ([]models.Appointment, error)

	ListUncountedCompleted(
		ctx context.Context,
		limit int,
	) ([]models.Appointment, error)

	// CompleteIfActive moves an active appointment to completed and
	// reports whether this call changed it.
	CompleteIfActive(
		ctx context.Context,
		appointmentID uint,
		at time.Time,
	) (bool, error)

	// MarkCompletionCounted flips completion_counted false→true on a
	// completed appointment and reports whether this call flipped it.
	MarkCompletionCounted(
		ctx context.Context,
		appointmentID uint,
	) (bool, error)

	// -------- Tx --------
	WithinTx(
		ctx context.Context,
		fn func(tx Repository) error,
	) error
}
