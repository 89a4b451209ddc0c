package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/insightequity/alpha-api/internal/db/bunx"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/uptrace/bun"
)

// BunMeetingNoteRepository implements MeetingNoteRepository using Bun ORM
type BunMeetingNoteRepository struct {
	db *bun.DB
}

// NewBunMeetingNoteRepository creates a new Bun-based meeting note repository
func NewBunMeetingNoteRepository(db *bun.DB) *BunMeetingNoteRepository {
	return &BunMeetingNoteRepository{db: db}
}

// Create inserts a new meeting note
func (r *BunMeetingNoteRepository) Create(ctx context.Context, note *models.MeetingNote) error {
	if note.ID == "" {
		note.ID = bunx.NewUUIDv7()
	}
	_, err := r.db.NewInsert().
		Model(note).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create meeting note: %w", err)
	}
	return nil
}

// GetByID retrieves a meeting note by its ID
func (r *BunMeetingNoteRepository) GetByID(ctx context.Context, id string) (*models.MeetingNote, error) {
	note := new(models.MeetingNote)
	err := r.db.NewSelect().
		Model(note).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("meeting note %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get meeting note by ID: %w", err)
	}
	return note, nil
}

// Update updates an existing meeting note
func (r *BunMeetingNoteRepository) Update(ctx context.Context, note *models.MeetingNote) error {
	note.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(note).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update meeting note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("meeting note %s: %w", note.ID, ErrNotFound)
	}
	return nil
}

// List returns all meeting notes, most recent meeting first
func (r *BunMeetingNoteRepository) List(ctx context.Context) ([]models.MeetingNote, error) {
	var notes []models.MeetingNote
	err := r.db.NewSelect().
		Model(&notes).
		Order("meeting_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meeting notes: %w", err)
	}
	return notes, nil
}

// ListByCompany returns all meeting notes for a company, most recent first
func (r *BunMeetingNoteRepository) ListByCompany(ctx context.Context, companyID string) ([]models.MeetingNote, error) {
	var notes []models.MeetingNote
	err := r.db.NewSelect().
		Model(&notes).
		Where("company_id = ?", companyID).
		Order("meeting_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meeting notes by company: %w", err)
	}
	return notes, nil
}

// Delete removes a meeting note by ID
func (r *BunMeetingNoteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.MeetingNote)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete meeting note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("meeting note %s: %w", id, ErrNotFound)
	}
	return nil
}
