package migrations

import (
	"context"
	"fmt"

	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260115000000, down_20260115000000)
}

// up_20260115000000 initializes the full application schema
func up_20260115000000(ctx context.Context, db *bun.DB) error {
	// 1. Create users table
	fmt.Print(" [up] creating users table...")
	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`)
	if err != nil {
		return fmt.Errorf("failed to create index on users.email: %w", err)
	}
	fmt.Println(" OK")

	// 2. Create companies table
	fmt.Print(" [up] creating companies table...")
	_, err = db.NewCreateTable().
		Model((*models.Company)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create companies table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name)`)
	if err != nil {
		return fmt.Errorf("failed to create index on companies.name: %w", err)
	}
	fmt.Println(" OK")

	// 3. Create reports table
	fmt.Print(" [up] creating reports table...")
	rq := db.NewCreateTable().
		Model((*models.Report)(nil)).
		IfNotExists()

	// For SQLite, define FKs during table creation
	if IsSQLite(db) {
		rq = rq.ForeignKey(`(author_id) REFERENCES users(id)`)
		rq = rq.ForeignKey(`(company_id) REFERENCES companies(id) ON DELETE SET NULL`)
	}
	_, err = rq.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_author ON reports(author_id)`)
	if err != nil {
		return fmt.Errorf("failed to create index on reports.author_id: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_company ON reports(company_id)`)
	if err != nil {
		return fmt.Errorf("failed to create index on reports.company_id: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status)`)
	if err != nil {
		return fmt.Errorf("failed to create index on reports.status: %w", err)
	}

	if IsPostgreSQL(db) {
		// FK constraints for PG (SQLite defined them at CREATE TABLE time)
		_, err = db.Exec(`
			ALTER TABLE reports
			ADD CONSTRAINT fk_reports_author
			FOREIGN KEY (author_id) REFERENCES users(id)
		`)
		if err != nil {
			return fmt.Errorf("failed to add FK on reports.author_id: %w", err)
		}
		_, err = db.Exec(`
			ALTER TABLE reports
			ADD CONSTRAINT fk_reports_company
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE SET NULL
		`)
		if err != nil {
			return fmt.Errorf("failed to add FK on reports.company_id: %w", err)
		}
	}
	fmt.Println(" OK")

	// 4. Create meeting_notes table
	fmt.Print(" [up] creating meeting_notes table...")
	mq := db.NewCreateTable().
		Model((*models.MeetingNote)(nil)).
		IfNotExists()
	if IsSQLite(db) {
		mq = mq.ForeignKey(`(created_by) REFERENCES users(id)`)
		mq = mq.ForeignKey(`(company_id) REFERENCES companies(id) ON DELETE SET NULL`)
	}
	_, err = mq.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create meeting_notes table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_meeting_notes_company ON meeting_notes(company_id)`)
	if err != nil {
		return fmt.Errorf("failed to create index on meeting_notes.company_id: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_meeting_notes_date ON meeting_notes(meeting_date)`)
	if err != nil {
		return fmt.Errorf("failed to create index on meeting_notes.meeting_date: %w", err)
	}

	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE meeting_notes
			ADD CONSTRAINT fk_meeting_notes_creator
			FOREIGN KEY (created_by) REFERENCES users(id)
		`)
		if err != nil {
			return fmt.Errorf("failed to add FK on meeting_notes.created_by: %w", err)
		}
		_, err = db.Exec(`
			ALTER TABLE meeting_notes
			ADD CONSTRAINT fk_meeting_notes_company
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE SET NULL
		`)
		if err != nil {
			return fmt.Errorf("failed to add FK on meeting_notes.company_id: %w", err)
		}
	}
	fmt.Println(" OK")

	// 5. Create api_keys table
	fmt.Print(" [up] creating api_keys table...")
	kq := db.NewCreateTable().
		Model((*models.APIKey)(nil)).
		IfNotExists()
	if IsSQLite(db) {
		kq = kq.ForeignKey(`(created_by) REFERENCES users(id)`)
	}
	_, err = kq.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create api_keys table: %w", err)
	}

	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE api_keys
			ADD CONSTRAINT fk_api_keys_creator
			FOREIGN KEY (created_by) REFERENCES users(id)
		`)
		if err != nil {
			return fmt.Errorf("failed to add FK on api_keys.created_by: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20260115000000 drops the full application schema
func down_20260115000000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping application tables...")

	// Drop in reverse dependency order
	for _, model := range []any{
		(*models.APIKey)(nil),
		(*models.MeetingNote)(nil),
		(*models.Report)(nil),
		(*models.Company)(nil),
		(*models.User)(nil),
	} {
		_, err := db.NewDropTable().
			Model(model).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", model, err)
		}
	}

	fmt.Println(" OK")
	return nil
}
