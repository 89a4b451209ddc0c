package reportgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightequity/alpha-api/internal/db/models"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	}
}

func TestGenerateDraftReport(t *testing.T) {
	gen := NewGeneratorAt(fixedClock())

	report := gen.Generate("company-1", "author-1")

	assert.Equal(t, "AI Investment Analysis - 3/5/2026", report.Title)
	assert.Equal(t, "AI-generated investment analysis and market opportunity assessment", report.Summary)
	assert.Equal(t, models.ReportStatusDraft, report.Status)
	assert.True(t, report.GeneratedByAI)
	assert.Equal(t, "author-1", report.AuthorID)
	require.NotNil(t, report.CompanyID)
	assert.Equal(t, "company-1", *report.CompanyID)
}

func TestGenerateWithoutCompany(t *testing.T) {
	gen := NewGeneratorAt(fixedClock())

	report := gen.Generate("", "author-1")
	assert.Nil(t, report.CompanyID)
}

func TestGeneratedContentSections(t *testing.T) {
	gen := NewGenerator()
	report := gen.Generate("", "author-1")

	sections := []string{
		"# AI-Generated Investment Analysis",
		"## Executive Summary",
		"## Market Opportunity",
		"## Competitive Landscape",
		"## Investment Thesis",
		"## Risks & Considerations",
		"## Recommendation",
	}
	for _, s := range sections {
		assert.Contains(t, report.Content, s)
	}
}
