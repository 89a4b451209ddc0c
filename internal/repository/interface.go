package repository

import (
	"context"
	"errors"
	"time"

	"github.com/insightequity/alpha-api/internal/db/models"
)

// ErrNotFound is wrapped into every lookup miss so callers can map it to a
// 404 with errors.Is instead of string matching.
var ErrNotFound = errors.New("not found")

// UserRepository exposes persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role string) error
	UpdateLastLogin(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

// CompanyRepository exposes persistence operations for portfolio companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	List(ctx context.Context) ([]models.Company, error)
	Delete(ctx context.Context, id string) error
}

// ReportRepository exposes persistence operations for research reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	List(ctx context.Context) ([]models.Report, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Report, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Report, error)
	SetStatus(ctx context.Context, id string, status string, publishedAt *time.Time) error
	Delete(ctx context.Context, id string) error
}

// MeetingNoteRepository exposes persistence operations for meeting notes.
type MeetingNoteRepository interface {
	Create(ctx context.Context, note *models.MeetingNote) error
	GetByID(ctx context.Context, id string) (*models.MeetingNote, error)
	Update(ctx context.Context, note *models.MeetingNote) error
	List(ctx context.Context) ([]models.MeetingNote, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.MeetingNote, error)
	Delete(ctx context.Context, id string) error
}

// APIKeyRepository exposes persistence operations for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetByID(ctx context.Context, id string) (*models.APIKey, error)
	GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	List(ctx context.Context) ([]models.APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
	Delete(ctx context.Context, id string) error
}
