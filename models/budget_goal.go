package models

// BudgetGoal is the monthly spending ceiling. Month is the calendar month the
// goal applies to, formatted "2006-01". The backend keeps one goal per user
// per month; the client updates it in place.
type BudgetGoal struct {
	ID    int64  `json:"id"`
	Price int64  `json:"price"`
	Month string `json:"date"`
}

// BudgetGoalInput is the creation/update payload for a monthly goal.
type BudgetGoalInput struct {
	Price int64  `json:"price"`
	Month string `json:"date"`
}
