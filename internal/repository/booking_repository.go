package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/shareloop/service-sharing/internal/domain/booking"
	"github.com/shareloop/service-sharing/internal/pkg/apperr"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	StartTime time.Time `gorm:"not null;index"`
	EndTime   time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;size:20;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// sortColumns whitelists the sortable fields and maps them to columns.
var sortColumns = map[string]string{
	"start":      "bookings.start_time",
	"end":        "bookings.end_time",
	"status":     "bookings.status",
	"created_at": "bookings.created_at",
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// UpdateStatus transitions a booking's status with a conditional single-row
// write. The update applies only while the stored status still equals from;
// a lost race against a concurrent decision reports a conflict.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to bookingDomain.Status) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperr.NewConflict("booking was decided by another transaction")
	}

	return nil
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByBookerIDAndItemID retrieves every booking the given user made for
// the given item, without paging.
func (r *GormBookingRepository) FindByBookerIDAndItemID(ctx context.Context, bookerID, itemID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("booker_id = ? AND item_id = ?", bookerID, itemID).
		Order("start_time DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by booker and item: %w", err)
	}
	return toDomainBookings(models), nil
}

// FindByBookerID retrieves all of a booker's bookings.
func (r *GormBookingRepository) FindByBookerID(ctx context.Context, bookerID uuid.UUID, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find bookings by booker",
		r.bookerScope(ctx, bookerID))
}

// FindCurrentByBookerID retrieves the booker's bookings whose interval
// contains now.
func (r *GormBookingRepository) FindCurrentByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find current bookings by booker",
		r.bookerScope(ctx, bookerID).Where("start_time <= ? AND end_time >= ?", now, now))
}

// FindPastByBookerID retrieves the booker's bookings that have ended.
func (r *GormBookingRepository) FindPastByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find past bookings by booker",
		r.bookerScope(ctx, bookerID).Where("end_time < ?", now))
}

// FindFutureByBookerID retrieves the booker's bookings that have not started.
func (r *GormBookingRepository) FindFutureByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find future bookings by booker",
		r.bookerScope(ctx, bookerID).Where("start_time > ?", now))
}

// FindByBookerIDAndStatus retrieves the booker's bookings in a given status.
func (r *GormBookingRepository) FindByBookerIDAndStatus(ctx context.Context, bookerID uuid.UUID, status bookingDomain.Status, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find bookings by booker and status",
		r.bookerScope(ctx, bookerID).Where("bookings.status = ?", string(status)))
}

// FindByOwnerID retrieves all bookings of items owned by the given user.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find bookings by owner",
		r.ownerScope(ctx, ownerID))
}

// FindCurrentByOwnerID retrieves the owner's item bookings whose interval
// contains now.
func (r *GormBookingRepository) FindCurrentByOwnerID(ctx context.Context, ownerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find current bookings by owner",
		r.ownerScope(ctx, ownerID).Where("start_time <= ? AND end_time >= ?", now, now))
}

// FindPastByOwnerID retrieves the owner's item bookings that have ended.
func (r *GormBookingRepository) FindPastByOwnerID(ctx context.Context, ownerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find past bookings by owner",
		r.ownerScope(ctx, ownerID).Where("end_time < ?", now))
}

// FindFutureByOwnerID retrieves the owner's item bookings that have not
// started.
func (r *GormBookingRepository) FindFutureByOwnerID(ctx context.Context, ownerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find future bookings by owner",
		r.ownerScope(ctx, ownerID).Where("start_time > ?", now))
}

// FindByOwnerIDAndStatus retrieves the owner's item bookings in a given
// status.
func (r *GormBookingRepository) FindByOwnerIDAndStatus(ctx context.Context, ownerID uuid.UUID, status bookingDomain.Status, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.listBookings(ctx, q, "failed to find bookings by owner and status",
		r.ownerScope(ctx, ownerID).Where("bookings.status = ?", string(status)))
}

// --- Query Helpers ---

func (r *GormBookingRepository) bookerScope(ctx context.Context, bookerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("booker_id = ?", bookerID)
}

// ownerScope filters bookings by the owning user of the booked item. The
// ownership join keeps the scoping in a single query.
func (r *GormBookingRepository) ownerScope(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("items.owner_id = ?", ownerID)
}

// orderClause resolves the query's sort field against the whitelist and
// renders the ORDER BY expression.
func orderClause(q bookingDomain.ListQuery) (string, error) {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		return "", apperr.NewValidation(fmt.Sprintf("cannot sort bookings by %q", q.SortBy))
	}

	direction := "ASC"
	if q.SortDir == bookingDomain.SortDesc {
		direction = "DESC"
	}
	return column + " " + direction, nil
}

func (r *GormBookingRepository) listBookings(ctx context.Context, q bookingDomain.ListQuery, errMsg string, query *gorm.DB) ([]*bookingDomain.Booking, error) {
	order, err := orderClause(q)
	if err != nil {
		return nil, err
	}

	var models []BookingModel
	if err := query.
		Order(order).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return toDomainBookings(models), nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		StartTime: bk.Start(),
		EndTime:   bk.End(),
		Status:    string(bk.Status()),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		m.ID,
		m.ItemID,
		m.BookerID,
		m.StartTime,
		m.EndTime,
		bookingDomain.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}
