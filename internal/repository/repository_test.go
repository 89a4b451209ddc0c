package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/insightequity/alpha-api/internal/db/bunx"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/migrations"
)

// setupTestDB opens an in-memory SQLite database with the full schema
// applied.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, repo *BunUserRepository, email, role string) *models.User {
	t.Helper()
	hash := "$2a$12$notarealhashnotarealhashnotarealhashnotarealhashnotar"
	user := &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: &hash,
		Role:         role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	return user
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "ana@fund.example", "ANALYST")

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@fund.example", byID.Email)
	assert.Equal(t, "ANALYST", byID.Role)

	byEmail, err := repo.GetByEmail(ctx, "ana@fund.example")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepositoryNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@fund.example")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.UpdateRole(ctx, "missing-id", "ADMIN"), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing-id"), ErrNotFound)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)

	createTestUser(t, repo, "dup@fund.example", "VIEWER")

	hash := "x"
	err := repo.Create(context.Background(), &models.User{
		Email:        "dup@fund.example",
		Name:         "Second",
		PasswordHash: &hash,
		Role:         "VIEWER",
	})
	assert.Error(t, err)
}

func TestUserRepositoryUpdateRoleAndLastLogin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "promo@fund.example", "VIEWER")

	require.NoError(t, repo.UpdateRole(ctx, user.ID, "EDITOR"))
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "EDITOR", got.Role)
	require.NotNil(t, got.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *got.LastLoginAt, time.Minute)
}

func TestUserRepositoryList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)

	createTestUser(t, repo, "a@fund.example", "VIEWER")
	createTestUser(t, repo, "b@fund.example", "ADMIN")

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestReportRepositoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	reports := NewBunReportRepository(db)
	ctx := context.Background()

	author := createTestUser(t, users, "author@fund.example", "ANALYST")

	report := &models.Report{
		Title:    "Series B Deep Dive",
		Content:  "Strong retention numbers.",
		AuthorID: author.ID,
	}
	require.NoError(t, reports.Create(ctx, report))
	assert.Equal(t, models.ReportStatusDraft, report.Status)

	// Publish
	now := time.Now()
	require.NoError(t, reports.SetStatus(ctx, report.ID, models.ReportStatusPublished, &now))

	got, err := reports.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)

	// Back to draft clears the publish stamp
	require.NoError(t, reports.SetStatus(ctx, report.ID, models.ReportStatusDraft, nil))
	got, err = reports.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusDraft, got.Status)
	assert.Nil(t, got.PublishedAt)

	// Delete
	require.NoError(t, reports.Delete(ctx, report.ID))
	_, err = reports.GetByID(ctx, report.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	companies := NewBunCompanyRepository(db)
	reports := NewBunReportRepository(db)
	ctx := context.Background()

	a := createTestUser(t, users, "a@fund.example", "ANALYST")
	b := createTestUser(t, users, "b@fund.example", "EDITOR")

	company := &models.Company{Name: "Quantico Robotics"}
	require.NoError(t, companies.Create(ctx, company))

	require.NoError(t, reports.Create(ctx, &models.Report{
		Title: "One", AuthorID: a.ID, CompanyID: &company.ID,
	}))
	require.NoError(t, reports.Create(ctx, &models.Report{
		Title: "Two", AuthorID: b.ID,
	}))

	byAuthor, err := reports.ListByAuthor(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "One", byAuthor[0].Title)

	byCompany, err := reports.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, byCompany, 1)

	all, err := reports.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMeetingNoteRepositoryJSONColumns(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	notes := NewBunMeetingNoteRepository(db)
	ctx := context.Background()

	creator := createTestUser(t, users, "notes@fund.example", "EDITOR")

	note := &models.MeetingNote{
		Title:       "Founder intro call",
		MeetingDate: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		Content:     "Discussed go-to-market.",
		Attendees:   models.StringList{"Priya", "Sam"},
		Attachments: models.AttachmentList{{Name: "deck", URL: "https://example.com/deck.pdf"}},
		CreatedBy:   creator.ID,
	}
	require.NoError(t, notes.Create(ctx, note))

	got, err := notes.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"Priya", "Sam"}, got.Attendees)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "deck", got.Attachments[0].Name)
}

func TestAPIKeyRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	keys := NewBunAPIKeyRepository(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "admin@fund.example", "ADMIN")

	key := &models.APIKey{
		Name:      "ci",
		Prefix:    "iea_4fJk2p9",
		KeyHash:   "deadbeefdeadbeef",
		CreatedBy: admin.ID,
	}
	require.NoError(t, keys.Create(ctx, key))

	byHash, err := keys.GetByHash(ctx, "deadbeefdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, key.ID, byHash.ID)

	require.NoError(t, keys.TouchLastUsed(ctx, key.ID))
	require.NoError(t, keys.SetDisabled(ctx, key.ID, true))

	// Disabled keys are invisible to the hash lookup.
	_, err = keys.GetByHash(ctx, "deadbeefdeadbeef")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := keys.GetByID(ctx, key.ID)
	require.NoError(t, err)
	assert.True(t, got.Disabled)
	require.NotNil(t, got.LastUsedAt)
}
