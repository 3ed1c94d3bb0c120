package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareloop/service-sharing/internal/domain/booking"
	itemDomain "github.com/shareloop/service-sharing/internal/domain/item"
	userDomain "github.com/shareloop/service-sharing/internal/domain/user"
	"github.com/shareloop/service-sharing/internal/pkg/apperr"
	"github.com/shareloop/service-sharing/internal/pkg/kafka"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
}

func newFakeUserRepo(users ...*userDomain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
	for _, u := range users {
		r.users[u.ID()] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NewNotFound("user", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) FindAll(context.Context) ([]*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*userDomain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email() < users[j].Email() })
	return users, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return apperr.NewNotFound("user", u.ID().String())
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// fakeItemRepo is an in-memory ItemRepository.
type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*itemDomain.Item
}

func newFakeItemRepo(items ...*itemDomain.Item) *fakeItemRepo {
	r := &fakeItemRepo{items: make(map[uuid.UUID]*itemDomain.Item)}
	for _, it := range items {
		r.items[it.ID()] = it
	}
	return r
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, apperr.NewNotFound("item", id.String())
	}
	return it, nil
}

func (r *fakeItemRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*itemDomain.Item
	for _, it := range r.items {
		if it.OwnerID() == ownerID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *fakeItemRepo) Search(_ context.Context, text string) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*itemDomain.Item
	for _, it := range r.items {
		if !it.Available() {
			continue
		}
		if containsFold(it.Name(), text) || containsFold(it.Description(), text) {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *fakeItemRepo) Save(_ context.Context, it *itemDomain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID()] = it
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, it *itemDomain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[it.ID()]; !ok {
		return apperr.NewNotFound("item", it.ID().String())
	}
	r.items[it.ID()] = it
	return nil
}

func (r *fakeItemRepo) ownerOf(id uuid.UUID) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return uuid.Nil, false
	}
	return it.OwnerID(), true
}

// fakeCommentRepo is an in-memory CommentRepository.
type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []*itemDomain.Comment
}

func (r *fakeCommentRepo) Save(_ context.Context, c *itemDomain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, c)
	return nil
}

func (r *fakeCommentRepo) FindByItemID(_ context.Context, itemID uuid.UUID) ([]*itemDomain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*itemDomain.Comment
	for _, c := range r.comments {
		if c.ItemID() == itemID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeBookingRepo is an in-memory BookingRepository. Owner-scoped queries
// resolve item ownership through the attached item repo, mirroring the join
// the real store performs.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	items    *fakeItemRepo
}

func newFakeBookingRepo(items *fakeItemRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		items:    items,
	}
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to bookingDomain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status() != from {
		return apperr.NewConflict("booking was decided by another transaction")
	}
	r.bookings[id] = bookingDomain.Reconstruct(
		b.ID(), b.ItemID(), b.BookerID(), b.Start(), b.End(), to, b.CreatedAt(), time.Now().UTC(),
	)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperr.NewNotFound("booking", id.String())
	}
	return bookingDomain.Reconstruct(
		b.ID(), b.ItemID(), b.BookerID(), b.Start(), b.End(), b.Status(), b.CreatedAt(), b.UpdatedAt(),
	), nil
}

func (r *fakeBookingRepo) FindByBookerIDAndItemID(_ context.Context, bookerID, itemID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.BookerID() == bookerID && b.ItemID() == itemID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start().After(out[j].Start()) })
	return out, nil
}

func (r *fakeBookingRepo) FindByBookerID(_ context.Context, bookerID uuid.UUID, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return b.BookerID() == bookerID
	})
}

func (r *fakeBookingRepo) FindCurrentByBookerID(_ context.Context, bookerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return b.BookerID() == bookerID && !b.Start().After(now) && !b.End().Before(now)
	})
}

func (r *fakeBookingRepo) FindPastByBookerID(_ context.Context, bookerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return b.BookerID() == bookerID && b.End().Before(now)
	})
}

func (r *fakeBookingRepo) FindFutureByBookerID(_ context.Context, bookerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return b.BookerID() == bookerID && b.Start().After(now)
	})
}

func (r *fakeBookingRepo) FindByBookerIDAndStatus(_ context.Context, bookerID uuid.UUID, status bookingDomain.Status, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return b.BookerID() == bookerID && b.Status() == status
	})
}

func (r *fakeBookingRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return r.ownedBy(b, ownerID)
	})
}

func (r *fakeBookingRepo) FindCurrentByOwnerID(_ context.Context, ownerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return r.ownedBy(b, ownerID) && !b.Start().After(now) && !b.End().Before(now)
	})
}

func (r *fakeBookingRepo) FindPastByOwnerID(_ context.Context, ownerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return r.ownedBy(b, ownerID) && b.End().Before(now)
	})
}

func (r *fakeBookingRepo) FindFutureByOwnerID(_ context.Context, ownerID uuid.UUID, now time.Time, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return r.ownedBy(b, ownerID) && b.Start().After(now)
	})
}

func (r *fakeBookingRepo) FindByOwnerIDAndStatus(_ context.Context, ownerID uuid.UUID, status bookingDomain.Status, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	return r.filter(q, func(b *bookingDomain.Booking) bool {
		return r.ownedBy(b, ownerID) && b.Status() == status
	})
}

// lessBySortField mirrors the sortable fields the real store accepts.
var lessBySortField = map[string]func(a, b *bookingDomain.Booking) bool{
	"start":      func(a, b *bookingDomain.Booking) bool { return a.Start().Before(b.Start()) },
	"end":        func(a, b *bookingDomain.Booking) bool { return a.End().Before(b.End()) },
	"status":     func(a, b *bookingDomain.Booking) bool { return a.Status() < b.Status() },
	"created_at": func(a, b *bookingDomain.Booking) bool { return a.CreatedAt().Before(b.CreatedAt()) },
}

// filter applies the category predicate and then the sort and page window,
// the same contract the real store implements.
func (r *fakeBookingRepo) filter(q bookingDomain.ListQuery, keep func(*bookingDomain.Booking) bool) ([]*bookingDomain.Booking, error) {
	less, ok := lessBySortField[q.SortBy]
	if !ok {
		return nil, apperr.NewValidation("cannot sort bookings by " + q.SortBy)
	}

	r.mu.Lock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if q.SortDir == bookingDomain.SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})

	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) ownedBy(b *bookingDomain.Booking, ownerID uuid.UUID) bool {
	owner, ok := r.items.ownerOf(b.ItemID())
	return ok && owner == ownerID
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) at(i int) kafka.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[i]
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
