// Package reportgen produces draft investment analysis reports. The current
// generator is a canned template; it exists so the surrounding plumbing
// (authorization, persistence, draft workflow) is in place before a real
// model integration lands.
package reportgen

import (
	"time"

	"github.com/insightequity/alpha-api/internal/db/models"
)

const analysisTemplate = `
# AI-Generated Investment Analysis

## Executive Summary
This is an AI-generated analysis report for the specified company.

## Market Opportunity
The company operates in a growing market with significant potential.

## Competitive Landscape
Key competitors have been analyzed and the company shows strong positioning.

## Investment Thesis
Based on market analysis and company metrics, this presents an interesting opportunity.

## Risks & Considerations
- Market competition
- Regulatory environment
- Execution risk

## Recommendation
Further due diligence recommended.
`

// Generator builds generated reports. now is swappable for tests.
type Generator struct {
	now func() time.Time
}

// NewGenerator returns a Generator using wall-clock time.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorAt returns a Generator with a fixed clock.
func NewGeneratorAt(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate produces a draft report attributed to authorID. companyID may be
// empty, in which case the report is unattached. The report is not
// persisted; callers hand it to the report repository.
func (g *Generator) Generate(companyID, authorID string) *models.Report {
	report := &models.Report{
		Title:         "AI Investment Analysis - " + g.now().Format("1/2/2006"),
		Content:       analysisTemplate,
		Summary:       "AI-generated investment analysis and market opportunity assessment",
		Status:        models.ReportStatusDraft,
		GeneratedByAI: true,
		AuthorID:      authorID,
	}
	if companyID != "" {
		report.CompanyID = &companyID
	}
	return report
}
