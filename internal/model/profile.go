package model

// RiskLevel grades risk tolerance from very conservative to very aggressive.
type RiskLevel int

const (
	RiskVeryConservative RiskLevel = 1
	RiskConservative     RiskLevel = 2
	RiskModerate         RiskLevel = 3
	RiskAggressive       RiskLevel = 4
	RiskVeryAggressive   RiskLevel = 5
)

// CareerStage buckets an investor's working life for suitability purposes.
type CareerStage string

const (
	CareerEarly CareerStage = "early"
	CareerMid   CareerStage = "mid"
	CareerLate  CareerStage = "late"
)

// UserProfile holds the structured fields extracted from user input.
// Zero values mean "not provided"; the suitability step fills in defaults.
type UserProfile struct {
	Age            int
	AnnualIncome   float64
	MonthlyExpense float64
	TotalCapital   float64
	RiskLevel      RiskLevel
	Experience     int // years of investing experience
	CareerStage    CareerStage
	HasDebt        *bool
	DebtAmount     float64
}

// Suitability is the derived investment-appropriateness assessment.
type Suitability struct {
	CareerStage       CareerStage
	RiskLevel         RiskLevel
	AggressiveRatio   float64 // fraction of capital eligible for risk assets
	AggressiveCapital float64
}
