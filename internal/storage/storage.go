// Package storage defines the persistence interface for contact records.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/dialname/internal/models"
)

// ErrNotFound is returned when a contact does not exist.
var ErrNotFound = errors.New("contact not found")

// SourceState is the file modification time and size recorded when a source
// file was last imported.
type SourceState struct {
	Mtime int64
	Size  int64
	Count int
}

// Storage defines contact persistence operations.
type Storage interface {
	CreateContact(ctx context.Context, c *models.ContactRecord) error
	GetContact(ctx context.Context, id string) (*models.ContactRecord, error)
	UpdateContact(ctx context.Context, c *models.ContactRecord) error
	DeleteContact(ctx context.Context, id string) error
	ListContacts(ctx context.Context, offset, limit int) ([]*models.ContactRecord, error)
	AllContacts(ctx context.Context) ([]*models.ContactRecord, error)
	FindByNumber(ctx context.Context, number string) ([]*models.ContactRecord, error)

	// Source operations; a source is one imported file.
	ContactsBySource(ctx context.Context, source string) ([]*models.ContactRecord, error)
	ReplaceSource(ctx context.Context, source string, records []*models.ContactRecord) error
	DeleteBySource(ctx context.Context, source string) (int64, error)
	SourceInfo(ctx context.Context, source string) (*SourceState, error)

	// Stats
	CountContacts(ctx context.Context) (int64, error)
	CountNumbers(ctx context.Context) (int64, error)

	Close() error
}
