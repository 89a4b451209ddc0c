package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// User represents a registered principal. Role holds one value of the
// canonical role enumeration (see internal/auth); VIEWER is the default for
// self-registered accounts.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string     `bun:"id,pk,type:uuid"`
	Email        string     `bun:"email,notnull,unique"`
	Name         string     `bun:"name,notnull"`
	PasswordHash *string    `bun:"password_hash"` // bcrypt hash; nil for admin-provisioned accounts without a password yet
	Role         string     `bun:"role,notnull,default:'VIEWER'"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	LastLoginAt  *time.Time `bun:"last_login_at"`
}

// Company is a startup in the research portfolio.
type Company struct {
	bun.BaseModel `bun:"table:companies,alias:c"`

	ID           string    `bun:"id,pk,type:uuid"`
	Name         string    `bun:"name,notnull"`
	Industry     string    `bun:"industry"`
	FundingStage string    `bun:"funding_stage"`
	Location     string    `bun:"location"`
	Employees    int       `bun:"employees"`
	Website      string    `bun:"website"`
	Description  string    `bun:"description"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Report statuses. A report is a draft until someone with publish_report
// promotes it.
const (
	ReportStatusDraft     = "draft"
	ReportStatusPublished = "published"
)

// Report is a research report. AuthorID is the only ownership dimension
// consulted for edit rights.
type Report struct {
	bun.BaseModel `bun:"table:reports,alias:r"`

	ID            string     `bun:"id,pk,type:uuid"`
	Title         string     `bun:"title,notnull"`
	Content       string     `bun:"content"`
	Summary       string     `bun:"summary"`
	Status        string     `bun:"status,notnull,default:'draft'"`
	GeneratedByAI bool       `bun:"generated_by_ai,notnull,default:false"`
	CompanyID     *string    `bun:"company_id,type:uuid"` // FK to companies(id), nullable
	AuthorID      string     `bun:"author_id,notnull,type:uuid"`
	PublishedAt   *time.Time `bun:"published_at"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// StringList stores a JSON-encoded list of strings in a single column,
// portable across PostgreSQL and SQLite.
type StringList []string

// Scan implements sql.Scanner for reading from database
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("failed to scan StringList: expected []byte or string, got %T", value)
	}
}

// Value implements driver.Valuer for writing to database
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Attachment is a named link stored on a meeting note.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AttachmentList stores a JSON-encoded list of attachments in one column.
type AttachmentList []Attachment

// Scan implements sql.Scanner for reading from database
func (l *AttachmentList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("failed to scan AttachmentList: expected []byte or string, got %T", value)
	}
}

// Value implements driver.Valuer for writing to database
func (l AttachmentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// MeetingNote records a discussion with or about a portfolio company.
type MeetingNote struct {
	bun.BaseModel `bun:"table:meeting_notes,alias:mn"`

	ID          string         `bun:"id,pk,type:uuid"`
	Title       string         `bun:"title,notnull"`
	CompanyID   *string        `bun:"company_id,type:uuid"` // FK to companies(id), nullable
	MeetingDate time.Time      `bun:"meeting_date,notnull"`
	Content     string         `bun:"content"`
	Attendees   StringList     `bun:"attendees,type:jsonb"`
	Attachments AttachmentList `bun:"attachments,type:jsonb"`
	CreatedBy   string         `bun:"created_by,notnull,type:uuid"` // FK to users(id)
	CreatedAt   time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}

// APIKey is a programmatic credential. Only the SHA-256 hash of the secret
// is stored; the full key is shown once at creation. Prefix keeps the first
// characters for display so admins can tell keys apart.
type APIKey struct {
	bun.BaseModel `bun:"table:api_keys,alias:ak"`

	ID         string     `bun:"id,pk,type:uuid"`
	Name       string     `bun:"name,notnull"`
	Prefix     string     `bun:"prefix,notnull"`
	KeyHash    string     `bun:"key_hash,notnull,unique"`
	CreatedBy  string     `bun:"created_by,notnull,type:uuid"` // FK to users(id)
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	LastUsedAt *time.Time `bun:"last_used_at"`
	Disabled   bool       `bun:"disabled,notnull,default:false"`
}
