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
	"github.com/shareloop/service-sharing/internal/pkg/apperr"
)

// CreateItemRequest holds the data needed to list an item.
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Available   *bool      `json:"available" binding:"required"`
	RequestID   *uuid.UUID `json:"request_id"`
}

// UpdateItemRequest is a partial item update; nil fields are left unchanged.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDTO is the response representation of an item.
type ItemDTO struct {
	ID          uuid.UUID    `json:"id"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Available   bool         `json:"available"`
	RequestID   *uuid.UUID   `json:"request_id,omitempty"`
	Comments    []CommentDTO `json:"comments,omitempty"`
}

// CommentDTO is the response representation of an item comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Created    time.Time `json:"created"`
}

// ItemService orchestrates the item catalog and the comment-after-rental
// rule.
type ItemService struct {
	items    itemDomain.ItemRepository
	comments itemDomain.CommentRepository
	users    userDomain.UserRepository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewItemService creates an ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	comments itemDomain.CommentRepository,
	users userDomain.UserRepository,
	bookings bookingDomain.BookingRepository,
	logger *zap.Logger,
	now func() time.Time,
) *ItemService {
	if now == nil {
		now = time.Now
	}
	return &ItemService{
		items:    items,
		comments: comments,
		users:    users,
		bookings: bookings,
		logger:   logger,
		now:      now,
	}
}

// CreateItem lists a new item owned by the caller.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	exists, err := s.users.ExistsByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, apperr.NewNotFound("user", ownerID.String())
	}

	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, *req.Available, req.RequestID)
	if err != nil {
		return nil, err
	}

	if err := s.items.Save(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	result := toItemDTO(it, nil)
	return &result, nil
}

// UpdateItem applies a partial update. Only the owner may update an item;
// other callers get the not-found outcome.
func (s *ItemService) UpdateItem(ctx context.Context, callerID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if it.OwnerID() != callerID {
		return nil, apperr.NewNotFound("item", itemID.String())
	}

	it.ApplyPatch(req.Name, req.Description, req.Available)

	if err := s.items.Update(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	result := toItemDTO(it, nil)
	return &result, nil
}

// GetItem retrieves an item with its comments.
func (s *ItemService) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	result := toItemDTO(it, comments)
	return &result, nil
}

// ListByOwner lists the items owned by the given user.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error) {
	exists, err := s.users.ExistsByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, apperr.NewNotFound("user", ownerID.String())
	}

	items, err := s.items.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it, nil)
	}
	return dtos, nil
}

// Search returns available items matching the text. A blank query returns
// an empty result without touching the store.
func (s *ItemService) Search(ctx context.Context, text string) ([]ItemDTO, error) {
	if text == "" {
		return []ItemDTO{}, nil
	}

	items, err := s.items.Search(ctx, text)
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it, nil)
	}
	return dtos, nil
}

// CreateComment adds a comment to an item. The author must have at least
// one approved booking of the item that has already started.
func (s *ItemService) CreateComment(ctx context.Context, authorID, itemID uuid.UUID, text string) (*CommentDTO, error) {
	now := s.now()

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindByBookerIDAndItemID(ctx, authorID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for comment check: %w", err)
	}

	rented := false
	for _, bk := range bookings {
		if bk.Status() == bookingDomain.StatusApproved && bk.Start().Before(now) {
			rented = true
			break
		}
	}
	if !rented {
		return nil, apperr.NewValidation("user did not rent this item")
	}

	comment, err := itemDomain.NewComment(itemID, authorID, author.Name(), text, now)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	result := toCommentDTO(comment)
	return &result, nil
}

// --- Helpers ---

func toItemDTO(it *itemDomain.Item, comments []*itemDomain.Comment) ItemDTO {
	dto := ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
	}
	if len(comments) > 0 {
		dto.Comments = make([]CommentDTO, len(comments))
		for i, c := range comments {
			dto.Comments[i] = toCommentDTO(c)
		}
	}
	return dto
}

func toCommentDTO(c *itemDomain.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID(),
		ItemID:     c.ItemID(),
		AuthorName: c.AuthorName(),
		Text:       c.Text(),
		Created:    c.Created(),
	}
}
