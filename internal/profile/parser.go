// Package profile extracts a structured investor profile from free-form
// text and derives the capital split appropriate for it.
package profile

import (
	"regexp"
	"strconv"
	"strings"

	"AllocAdvisor/internal/model"
)

var (
	ageRe           = regexp.MustCompile(`(?i)(?:age[d]?\s*[:=]?\s*|i am\s+|i'm\s+)(\d{1,3})\b`)
	annualIncomeRe  = regexp.MustCompile(`(?i)(?:annual income|yearly income|salary|earn(?:ing)?s?)\D{0,20}?([\d,.]+)\s*([km]?)\b`)
	monthlyCostRe   = regexp.MustCompile(`(?i)(?:monthly (?:expense|spending|cost)s?|spend(?:ing)? per month)\D{0,20}?([\d,.]+)\s*([km]?)\b`)
	totalCapitalRe  = regexp.MustCompile(`(?i)(?:total capital|investable (?:capital|assets)|savings|portfolio)\D{0,20}?([\d,.]+)\s*([km]?)\b`)
	experienceRe    = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:\+\s*)?years?\s*(?:of\s+)?(?:investment|investing|trading|market)\s*experience`)
	experienceAltRe = regexp.MustCompile(`(?i)(?:investment|investing|trading)\s*experience\D{0,10}?(\d{1,2})\s*years?`)
	debtAmountRe    = regexp.MustCompile(`(?i)(?:debt|loan|mortgage)\D{0,20}?([\d,.]+)\s*([km]?)\b`)
	noDebtRe        = regexp.MustCompile(`(?i)\b(?:no|without|free of)\s+(?:debt|loans?|mortgage)\b|\bdebt[- ]free\b`)
	hasDebtRe       = regexp.MustCompile(`(?i)\b(?:have|has|carrying|with)\s+(?:a\s+)?(?:debt|loans?|mortgage)\b`)
)

// riskKeywords maps phrasing in the profile text to the 1-5 risk scale.
// Longer, more specific phrases are listed first so they match before
// their shorter substrings.
var riskKeywords = []struct {
	phrase string
	level  model.RiskLevel
}{
	{"very conservative", model.RiskVeryConservative},
	{"extremely cautious", model.RiskVeryConservative},
	{"capital preservation", model.RiskVeryConservative},
	{"very aggressive", model.RiskVeryAggressive},
	{"high risk tolerance", model.RiskVeryAggressive},
	{"conservative", model.RiskConservative},
	{"cautious", model.RiskConservative},
	{"risk averse", model.RiskConservative},
	{"aggressive", model.RiskAggressive},
	{"growth oriented", model.RiskAggressive},
	{"balanced", model.RiskModerate},
	{"moderate", model.RiskModerate},
}

// Parse extracts whatever fields the text mentions; absent fields keep
// their zero values and defaults are applied by ApplyDefaults. Parsing
// never fails: unrecognized text simply yields an emptier profile.
func Parse(text string) model.UserProfile {
	var p model.UserProfile

	if m := ageRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 && v < 120 {
			p.Age = v
		}
	}
	if m := annualIncomeRe.FindStringSubmatch(text); m != nil {
		p.AnnualIncome = parseAmount(m[1], m[2])
	}
	if m := monthlyCostRe.FindStringSubmatch(text); m != nil {
		p.MonthlyExpense = parseAmount(m[1], m[2])
	}
	if m := totalCapitalRe.FindStringSubmatch(text); m != nil {
		p.TotalCapital = parseAmount(m[1], m[2])
	}

	lower := strings.ToLower(text)
	for _, kw := range riskKeywords {
		if strings.Contains(lower, kw.phrase) {
			p.RiskLevel = kw.level
			break
		}
	}

	if m := experienceRe.FindStringSubmatch(text); m != nil {
		p.Experience, _ = strconv.Atoi(m[1])
	} else if m := experienceAltRe.FindStringSubmatch(text); m != nil {
		p.Experience, _ = strconv.Atoi(m[1])
	}

	if noDebtRe.MatchString(text) {
		p.HasDebt = boolPtr(false)
	} else if m := debtAmountRe.FindStringSubmatch(text); m != nil {
		p.HasDebt = boolPtr(true)
		p.DebtAmount = parseAmount(m[1], m[2])
	} else if hasDebtRe.MatchString(text) {
		p.HasDebt = boolPtr(true)
	}

	if p.Age > 0 {
		p.CareerStage = stageForAge(p.Age)
	}

	return p
}

// ApplyDefaults fills the fields a partial profile leaves empty so the
// downstream suitability step always has a complete input.
func ApplyDefaults(p model.UserProfile) model.UserProfile {
	if p.Age == 0 {
		p.Age = 35
	}
	if p.CareerStage == "" {
		p.CareerStage = stageForAge(p.Age)
	}
	if p.RiskLevel == 0 {
		p.RiskLevel = model.RiskModerate
	}
	if p.Experience < 0 {
		p.Experience = 0
	}
	return p
}

func stageForAge(age int) model.CareerStage {
	switch {
	case age < 35:
		return model.CareerEarly
	case age < 50:
		return model.CareerMid
	default:
		return model.CareerLate
	}
}

// parseAmount converts "1,200.50" plus an optional k/m suffix into a
// plain float. Malformed numbers yield 0.
func parseAmount(num, suffix string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(suffix) {
	case "k":
		v *= 1e3
	case "m":
		v *= 1e6
	}
	return v
}

func boolPtr(b bool) *bool { return &b }
