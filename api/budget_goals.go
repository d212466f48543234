package api

import (
	"context"
	"fmt"
	"net/http"

	"stopusing/client/models"
)

const budgetGoalsPath = "/api/v1/budgetgoals"

func (c *Client) BudgetGoals(ctx context.Context) ([]models.BudgetGoal, error) {
	return call[[]models.BudgetGoal](ctx, c, http.MethodGet, budgetGoalsPath, nil, nil)
}

func (c *Client) CreateBudgetGoal(ctx context.Context, in models.BudgetGoalInput) (models.BudgetGoal, error) {
	return call[models.BudgetGoal](ctx, c, http.MethodPost, budgetGoalsPath, nil, in)
}

func (c *Client) UpdateBudgetGoal(ctx context.Context, id int64, in models.BudgetGoalInput) (models.BudgetGoal, error) {
	return call[models.BudgetGoal](ctx, c, http.MethodPut, fmt.Sprintf("%s/%d", budgetGoalsPath, id), nil, in)
}
