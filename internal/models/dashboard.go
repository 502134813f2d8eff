package models

// DashboardData — составной агрегат для главного экрана.
type DashboardData struct {
	MonthlyExpenses       float64            `json:"monthly_expenses"`
	CashBalance           float64            `json:"cash_balance"`
	SavingsBalance        float64            `json:"savings_balance"`
	TotalExpenses         float64            `json:"total_expenses"`
	CategoryBreakdown     map[string]float64 `json:"category_breakdown"`
	RecentRecommendations []string           `json:"recent_recommendations"`
}
