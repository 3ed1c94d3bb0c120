package item

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/internal/pkg/apperr"
)

// Comment is feedback left on an item by a user who actually rented it.
type Comment struct {
	id         uuid.UUID
	itemID     uuid.UUID
	authorID   uuid.UUID
	authorName string
	text       string
	created    time.Time
}

// NewComment creates a comment on an item.
func NewComment(itemID, authorID uuid.UUID, authorName, text string, created time.Time) (*Comment, error) {
	if text == "" {
		return nil, apperr.NewValidation("comment text is required")
	}
	return &Comment{
		id:         uuid.New(),
		itemID:     itemID,
		authorID:   authorID,
		authorName: authorName,
		text:       text,
		created:    created.UTC(),
	}, nil
}

// ReconstructComment rebuilds a Comment from persistence data.
func ReconstructComment(id, itemID, authorID uuid.UUID, authorName, text string, created time.Time) *Comment {
	return &Comment{
		id:         id,
		itemID:     itemID,
		authorID:   authorID,
		authorName: authorName,
		text:       text,
		created:    created,
	}
}

// ID returns the comment's unique identifier.
func (c *Comment) ID() uuid.UUID { return c.id }

// ItemID returns the id of the commented item.
func (c *Comment) ItemID() uuid.UUID { return c.itemID }

// AuthorID returns the id of the commenting user.
func (c *Comment) AuthorID() uuid.UUID { return c.authorID }

// AuthorName returns the display name captured at comment time.
func (c *Comment) AuthorName() string { return c.authorName }

// Text returns the comment body.
func (c *Comment) Text() string { return c.text }

// Created returns the creation timestamp.
func (c *Comment) Created() time.Time { return c.created }
