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

// BunAPIKeyRepository implements APIKeyRepository using Bun ORM
type BunAPIKeyRepository struct {
	db *bun.DB
}

// NewBunAPIKeyRepository creates a new Bun-based API key repository
func NewBunAPIKeyRepository(db *bun.DB) *BunAPIKeyRepository {
	return &BunAPIKeyRepository{db: db}
}

// Create inserts a new API key record
func (r *BunAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	if key.ID == "" {
		key.ID = bunx.NewUUIDv7()
	}
	_, err := r.db.NewInsert().
		Model(key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// GetByID retrieves an API key record by its ID
func (r *BunAPIKeyRepository) GetByID(ctx context.Context, id string) (*models.APIKey, error) {
	key := new(models.APIKey)
	err := r.db.NewSelect().
		Model(key).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("api key %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get api key by ID: %w", err)
	}
	return key, nil
}

// GetByHash retrieves an API key record by the SHA-256 hash of its secret.
// This is the authentication path, so disabled keys are excluded here.
func (r *BunAPIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	key := new(models.APIKey)
	err := r.db.NewSelect().
		Model(key).
		Where("key_hash = ?", keyHash).
		Where("disabled = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("api key: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get api key by hash: %w", err)
	}
	return key, nil
}

// List returns all API key records, newest first
func (r *BunAPIKeyRepository) List(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.NewSelect().
		Model(&keys).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// TouchLastUsed stamps last_used_at with the current time
func (r *BunAPIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model((*models.APIKey)(nil)).
		Set("last_used_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}

// SetDisabled flips the disabled flag on a key
func (r *BunAPIKeyRepository) SetDisabled(ctx context.Context, id string, disabled bool) error {
	result, err := r.db.NewUpdate().
		Model((*models.APIKey)(nil)).
		Set("disabled = ?", disabled).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set api key disabled: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("api key %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an API key record by ID
func (r *BunAPIKeyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.APIKey)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("api key %s: %w", id, ErrNotFound)
	}
	return nil
}
