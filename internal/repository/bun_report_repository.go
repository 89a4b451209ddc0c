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

// BunReportRepository implements ReportRepository using Bun ORM
type BunReportRepository struct {
	db *bun.DB
}

// NewBunReportRepository creates a new Bun-based report repository
func NewBunReportRepository(db *bun.DB) *BunReportRepository {
	return &BunReportRepository{db: db}
}

// Create inserts a new report. New reports default to draft status.
func (r *BunReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = bunx.NewUUIDv7()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusDraft
	}
	_, err := r.db.NewInsert().
		Model(report).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by its ID
func (r *BunReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	report := new(models.Report)
	err := r.db.NewSelect().
		Model(report).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get report by ID: %w", err)
	}
	return report, nil
}

// Update updates an existing report
func (r *BunReportRepository) Update(ctx context.Context, report *models.Report) error {
	report.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(report).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report %s: %w", report.ID, ErrNotFound)
	}
	return nil
}

// List returns all reports, newest first
func (r *BunReportRepository) List(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.NewSelect().
		Model(&reports).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ListByCompany returns all reports attached to a company, newest first
func (r *BunReportRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.NewSelect().
		Model(&reports).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports by company: %w", err)
	}
	return reports, nil
}

// ListByAuthor returns all reports written by a user, newest first
func (r *BunReportRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.NewSelect().
		Model(&reports).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports by author: %w", err)
	}
	return reports, nil
}

// SetStatus transitions a report between draft and published. publishedAt is
// stored as given, so un-publishing clears it with nil.
func (r *BunReportRepository) SetStatus(ctx context.Context, id string, status string, publishedAt *time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*models.Report)(nil)).
		Set("status = ?", status).
		Set("published_at = ?", publishedAt).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set report status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a report by ID
func (r *BunReportRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.Report)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return nil
}
