package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"AllocAdvisor/internal/model"
)

func sampleReport() ReportData {
	return ReportData{
		GeneratedAt: time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC),
		Profile:     model.UserProfile{TotalCapital: 200000},
		Suitability: model.Suitability{
			CareerStage:       model.CareerEarly,
			RiskLevel:         model.RiskModerate,
			AggressiveRatio:   0.35,
			AggressiveCapital: 70000,
		},
		UniverseName: "sector",
		RouteReason:  "selected the broad sector universe",
		Assessment: model.MarketAssessment{
			MarketPercentile: 32.5,
			MacroFraction:    0.71,
			Signal:           "undervalued",
			AvailableCapital: 49700,
			IdleCapital:      20300,
		},
		Results: []model.ScreeningResult{
			{Code: "801010", Name: "agriculture", ValuationPercentile: 12.3, SafetyScore: 0.61, CompositeScore: 42.7},
		},
		Plan: []model.InvestmentPlanItem{
			{Code: "801010", Name: "agriculture", RiskLabel: "low risk", Weight: 1.0, InvestAmount: 49700, EstimatedShares: 397},
		},
		ChartURL:           "https://example.com/report.png",
		SkippedInstruments: 2,
	}
}

func TestFormatReportSections(t *testing.T) {
	out := FormatReport(sampleReport())

	assert.Contains(t, out, "Allocation Advisory | 2026-08-26")
	assert.Contains(t, out, "career stage: early, risk level 3/5")
	assert.Contains(t, out, "risk-asset allowance: 35%")
	assert.Contains(t, out, "valuation percentile: 32.5 (undervalued)")
	assert.Contains(t, out, "| 801010 | agriculture | 12.3 | 0.61 | 42.7 |")
	assert.Contains(t, out, "| 801010 | agriculture | low risk | 100.0% | ¥49,700 | 397 |")
	assert.Contains(t, out, "2 instruments skipped")
	assert.Contains(t, out, "![valuation chart](https://example.com/report.png)")
}

func TestFormatReportFullProfile(t *testing.T) {
	hasDebt := true
	d := sampleReport()
	d.Profile = model.UserProfile{
		TotalCapital:   200000,
		AnnualIncome:   300000,
		MonthlyExpense: 8000,
		Experience:     5,
		HasDebt:        &hasDebt,
		DebtAmount:     50000,
	}

	out := FormatReport(d)
	assert.Contains(t, out, "annual income: ¥300,000")
	assert.Contains(t, out, "monthly expenses: ¥8,000")
	assert.Contains(t, out, "investing experience: 5 years")
	assert.Contains(t, out, "outstanding debt: ¥50,000")
}

func TestFormatReportOmitsUnprovidedProfileFields(t *testing.T) {
	noDebt := false
	d := sampleReport()
	d.Profile.HasDebt = &noDebt

	out := FormatReport(d)
	assert.NotContains(t, out, "annual income")
	assert.NotContains(t, out, "monthly expenses")
	assert.NotContains(t, out, "investing experience")
	assert.Contains(t, out, "debt-free")
}

func TestFormatReportEmptyScreening(t *testing.T) {
	d := sampleReport()
	d.Results = nil
	d.Plan = nil
	d.ChartURL = ""

	out := FormatReport(d)
	assert.Contains(t, out, "no instrument passed the safety gates")
	assert.NotContains(t, out, "![valuation chart]")
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "¥0", money(0))
	assert.Equal(t, "¥950", money(950))
	assert.Equal(t, "¥49,700", money(49700))
	assert.Equal(t, "¥1,234,567", money(1234567.4))
	assert.Equal(t, "-¥12,000", money(-12000))
}
