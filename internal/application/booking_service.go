package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareloop/service-sharing/internal/domain/booking"
	itemDomain "github.com/shareloop/service-sharing/internal/domain/item"
	userDomain "github.com/shareloop/service-sharing/internal/domain/user"
	"github.com/shareloop/service-sharing/internal/events"
	"github.com/shareloop/service-sharing/internal/pkg/apperr"
	"github.com/shareloop/service-sharing/internal/pkg/kafka"
)

// EventPublisher publishes CloudEvents to a topic. Satisfied by
// kafka.Producer; a nil publisher disables event emission.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	BookerID  uuid.UUID `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingService orchestrates booking creation, retrieval, listing and
// status transitions, and owns every authorization and availability rule
// around them. Each operation is a short synchronous unit of work against
// the store.
type BookingService struct {
	bookings bookingDomain.BookingRepository
	users    userDomain.UserRepository
	items    itemDomain.ItemRepository
	finders  *bookingDomain.FinderTables
	producer EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a BookingService. The now function supplies the
// instant used for interval validation and temporal list filters.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	users userDomain.UserRepository,
	items itemDomain.ItemRepository,
	producer EventPublisher,
	logger *zap.Logger,
	now func() time.Time,
) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings: bookings,
		users:    users,
		items:    items,
		finders:  bookingDomain.NewFinderTables(bookings, now),
		producer: producer,
		logger:   logger,
		now:      now,
	}
}

// CreateBooking requests a booking of an item for the given user. The item
// must exist, be available, and belong to someone else; the requester must
// exist; the interval must be strictly ordered and not start in the past.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	bk, err := bookingDomain.NewBooking(req.ItemID, bookerID, req.Start, req.End, s.now())
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByID(ctx, bookerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, apperr.NewNotFound("user", bookerID.String())
	}

	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if !it.Available() {
		return nil, apperr.NewItemNotAvailable(it.ID().String())
	}

	if it.OwnerID() == bookerID {
		return nil, apperr.NewSelfBookingForbidden()
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishRequested(ctx, bk, it.OwnerID())

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking. Only the booker and the item's
// owner may see it; any other caller gets the same not-found outcome as a
// missing booking so existence is not leaked.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, apperr.NewNotFound("user", requesterID.String())
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}

	if bk.BookerID() != requesterID && it.OwnerID() != requesterID {
		return nil, apperr.NewNotFound("booking", bookingID.String())
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ListByBooker lists the given user's bookings filtered by state.
func (s *BookingService) ListByBooker(ctx context.Context, bookerID uuid.UUID, state bookingDomain.State, q bookingDomain.ListQuery) ([]BookingDTO, error) {
	exists, err := s.users.ExistsByID(ctx, bookerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, apperr.NewNotFound("user", bookerID.String())
	}

	find, err := s.finders.ByBooker(state)
	if err != nil {
		return nil, err
	}

	bookings, err := find(ctx, bookerID, q)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListByOwner lists the bookings of items owned by the given user, filtered
// by state. The owner scoping is established by the store query itself.
func (s *BookingService) ListByOwner(ctx context.Context, ownerID uuid.UUID, state bookingDomain.State, q bookingDomain.ListQuery) ([]BookingDTO, error) {
	exists, err := s.users.ExistsByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, apperr.NewNotFound("user", ownerID.String())
	}

	find, err := s.finders.ByOwner(state)
	if err != nil {
		return nil, err
	}

	bookings, err := find(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ChangeStatus resolves a waiting booking to approved or rejected. Only the
// booked item's owner may decide; anyone else, including the booker, gets
// the not-found outcome. A booking that already left the waiting state
// cannot be decided again.
func (s *BookingService) ChangeStatus(ctx context.Context, bookingID, approverID uuid.UUID, approve bool) (*BookingDTO, error) {
	exists, err := s.users.ExistsByID(ctx, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, apperr.NewNotFound("user", approverID.String())
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if bk.Status() != bookingDomain.StatusWaiting {
		return nil, apperr.NewInvalidTransition(string(bk.Status()))
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}

	if it.OwnerID() != approverID {
		return nil, apperr.NewNotFound("booking", bookingID.String())
	}

	if err := bk.Decide(approve, s.now()); err != nil {
		return nil, err
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, bookingDomain.StatusWaiting, bk.Status()); err != nil {
		return nil, err
	}

	s.publishDecided(ctx, bk, it.OwnerID())

	result := toBookingDTO(bk)
	return &result, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		Start:     bk.Start(),
		End:       bk.End(),
		Status:    string(bk.Status()),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

// toBookingDTOs maps bookings to their output form, dropping any that fail
// to map. A well-formed booking never fails; this guards against rows with
// a status the state machine no longer recognizes.
func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, 0, len(bookings))
	for _, bk := range bookings {
		if !bk.Status().IsValid() {
			continue
		}
		dtos = append(dtos, toBookingDTO(bk))
	}
	return dtos
}

func (s *BookingService) publishRequested(ctx context.Context, bk *bookingDomain.Booking, ownerID uuid.UUID) {
	evt := events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		OwnerID:    ownerID,
		BookerID:   bk.BookerID(),
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: s.now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, evt)
}

func (s *BookingService) publishDecided(ctx context.Context, bk *bookingDomain.Booking, ownerID uuid.UUID) {
	eventType := events.BookingApproved
	if bk.Status() == bookingDomain.StatusRejected {
		eventType = events.BookingRejected
	}
	evt := events.BookingDecidedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		OwnerID:    ownerID,
		BookerID:   bk.BookerID(),
		Status:     string(bk.Status()),
		OccurredAt: s.now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, eventType, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent("service-sharing", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
