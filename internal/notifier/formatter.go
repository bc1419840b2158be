package notifier

import (
	"fmt"
	"strings"
	"time"

	"AllocAdvisor/internal/model"
)

// ReportData bundles everything one advisory run produced for rendering.
type ReportData struct {
	GeneratedAt        time.Time
	Profile            model.UserProfile
	Suitability        model.Suitability
	UniverseName       string
	RouteReason        string
	Assessment         model.MarketAssessment
	Results            []model.ScreeningResult
	Plan               []model.InvestmentPlanItem
	ChartURL           string
	SkippedInstruments int
}

// FormatReport renders the advisory run as webhook markdown.
func FormatReport(d ReportData) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("### 📊 Allocation Advisory | %s\n\n", d.GeneratedAt.Format("2006-01-02")))

	// Investor profile and capital split
	b.WriteString("**Investor**\n\n")
	b.WriteString(fmt.Sprintf("- career stage: %s, risk level %d/5\n", d.Suitability.CareerStage, d.Suitability.RiskLevel))
	b.WriteString(fmt.Sprintf("- total capital: %s\n", money(d.Profile.TotalCapital)))
	if d.Profile.AnnualIncome > 0 {
		b.WriteString(fmt.Sprintf("- annual income: %s\n", money(d.Profile.AnnualIncome)))
	}
	if d.Profile.MonthlyExpense > 0 {
		b.WriteString(fmt.Sprintf("- monthly expenses: %s\n", money(d.Profile.MonthlyExpense)))
	}
	if d.Profile.Experience > 0 {
		b.WriteString(fmt.Sprintf("- investing experience: %d years\n", d.Profile.Experience))
	}
	if d.Profile.HasDebt != nil {
		if *d.Profile.HasDebt {
			if d.Profile.DebtAmount > 0 {
				b.WriteString(fmt.Sprintf("- outstanding debt: %s\n", money(d.Profile.DebtAmount)))
			} else {
				b.WriteString("- outstanding debt: yes\n")
			}
		} else {
			b.WriteString("- debt-free\n")
		}
	}
	b.WriteString(fmt.Sprintf("- risk-asset allowance: %.0f%% (%s)\n\n",
		d.Suitability.AggressiveRatio*100, money(d.Suitability.AggressiveCapital)))

	// Universe routing
	if d.UniverseName != "" {
		b.WriteString(fmt.Sprintf("**Universe:** %s\n", d.UniverseName))
		if d.RouteReason != "" {
			b.WriteString(fmt.Sprintf("> %s\n", d.RouteReason))
		}
		b.WriteString("\n")
	}

	// Macro assessment
	b.WriteString("**Market**\n\n")
	b.WriteString(fmt.Sprintf("- valuation percentile: %.1f (%s)\n", d.Assessment.MarketPercentile, d.Assessment.Signal))
	b.WriteString(fmt.Sprintf("- deployable now: %s (%.0f%%)\n", money(d.Assessment.AvailableCapital), d.Assessment.MacroFraction*100))
	b.WriteString(fmt.Sprintf("- held back: %s\n\n", money(d.Assessment.IdleCapital)))

	// Screening table
	if len(d.Results) > 0 {
		b.WriteString("**Screening**\n\n")
		b.WriteString("| code | name | pe pct | safety | composite |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, r := range d.Results {
			b.WriteString(fmt.Sprintf("| %s | %s | %.1f | %.2f | %.1f |\n",
				r.Code, r.Name, r.ValuationPercentile, r.SafetyScore, r.CompositeScore))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("**Screening:** no instrument passed the safety gates today.\n\n")
	}
	if d.SkippedInstruments > 0 {
		b.WriteString(fmt.Sprintf("_%d instruments skipped for missing data._\n\n", d.SkippedInstruments))
	}

	// Plan table
	if len(d.Plan) > 0 {
		b.WriteString("**Plan**\n\n")
		b.WriteString("| code | name | risk | weight | amount | shares |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		var invested float64
		for _, item := range d.Plan {
			invested += item.InvestAmount
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %.1f%% | %s | %d |\n",
				item.Code, item.Name, item.RiskLabel, item.Weight*100, money(item.InvestAmount), item.EstimatedShares))
		}
		efficiency := 0.0
		if d.Assessment.AvailableCapital > 0 {
			efficiency = invested / d.Assessment.AvailableCapital * 100
		}
		b.WriteString(fmt.Sprintf("\nplanned %s of %s deployable (%.1f%%)\n\n",
			money(invested), money(d.Assessment.AvailableCapital), efficiency))
	}

	if d.ChartURL != "" {
		b.WriteString(fmt.Sprintf("![valuation chart](%s)\n", d.ChartURL))
	}

	return b.String()
}

// money renders an amount with thousands separators and no decimals.
func money(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := "¥" + strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
