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

// BunCompanyRepository implements CompanyRepository using Bun ORM
type BunCompanyRepository struct {
	db *bun.DB
}

// NewBunCompanyRepository creates a new Bun-based company repository
func NewBunCompanyRepository(db *bun.DB) *BunCompanyRepository {
	return &BunCompanyRepository{db: db}
}

// Create inserts a new company
func (r *BunCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = bunx.NewUUIDv7()
	}
	_, err := r.db.NewInsert().
		Model(company).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// GetByID retrieves a company by its ID
func (r *BunCompanyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	company := new(models.Company)
	err := r.db.NewSelect().
		Model(company).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get company by ID: %w", err)
	}
	return company, nil
}

// Update updates an existing company
func (r *BunCompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(company).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("company %s: %w", company.ID, ErrNotFound)
	}
	return nil
}

// List returns all companies ordered by name
func (r *BunCompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.NewSelect().
		Model(&companies).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// Delete removes a company by ID
func (r *BunCompanyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.Company)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return nil
}
