package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stopusing/client/models"
)

// MonthlyGoal fetches the goal for the month ("2006-01"). A successfully
// fetched goal is remembered locally; when the backend is unreachable the
// remembered value is served instead, so the goal survives offline use.
// ok is false when no goal exists for the month anywhere.
func (c *Coordinator) MonthlyGoal(ctx context.Context, month string) (goal models.BudgetGoal, ok bool, err error) {
	goals, err := c.api.BudgetGoals(ctx)
	if err != nil {
		if c.local != nil {
			if price, found := c.local.RememberedGoal(month); found {
				logger.Warn().Err(err).Str("month", month).Msg("serving remembered goal")
				return models.BudgetGoal{Price: price, Month: month}, true, nil
			}
		}
		return models.BudgetGoal{}, false, err
	}
	for _, g := range goals {
		if g.Month == month {
			if c.local != nil {
				if rememberErr := c.local.RememberGoal(month, g.Price); rememberErr != nil {
					logger.Warn().Err(rememberErr).Msg("failed to remember goal locally")
				}
			}
			return g, true, nil
		}
	}
	return models.BudgetGoal{}, false, nil
}

// SetMonthlyGoal creates the month's goal or updates it in place; the
// backend keeps one goal per user per month.
func (c *Coordinator) SetMonthlyGoal(ctx context.Context, month string, price int64) (models.BudgetGoal, error) {
	if price < 0 {
		return models.BudgetGoal{}, fmt.Errorf("goal price must not be negative: %d", price)
	}
	in := models.BudgetGoalInput{Price: price, Month: month}

	existing, found, err := c.MonthlyGoal(ctx, month)
	if err != nil {
		return models.BudgetGoal{}, err
	}

	var goal models.BudgetGoal
	if found && existing.ID != 0 {
		goal, err = c.api.UpdateBudgetGoal(ctx, existing.ID, in)
	} else {
		goal, err = c.api.CreateBudgetGoal(ctx, in)
	}
	if err != nil {
		return models.BudgetGoal{}, err
	}

	if c.local != nil {
		if rememberErr := c.local.RememberGoal(month, goal.Price); rememberErr != nil {
			logger.Warn().Err(rememberErr).Msg("failed to remember goal locally")
		}
	}
	return goal, nil
}

// CheckOverspend compares the month's report against its goal and, when
// spending exceeds the goal, asks the backend to push an overspend alarm.
func (c *Coordinator) CheckOverspend(ctx context.Context, month string) (bool, error) {
	goal, found, err := c.MonthlyGoal(ctx, month)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	report, err := c.api.TransactionReport(ctx, month)
	if err != nil {
		return false, err
	}
	if report.TotalPrice <= goal.Price {
		return false, nil
	}
	over := report.TotalPrice - goal.Price
	if err := c.api.SendOverspendAlarm(ctx, models.AlarmInput{Price: over}); err != nil {
		return true, err
	}
	return true, nil
}

// GoalProgress returns spent as a percentage of goal, exact to two decimal
// places. A zero goal reads as 0%.
func GoalProgress(spent, goal int64) decimal.Decimal {
	if goal <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(spent).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(goal), 2)
}

// DailyBudget splits the remaining goal evenly over the days left in the
// month, today included, rounded down to whole currency units. Overspent
// months read as 0.
func DailyBudget(goal, spent int64, today time.Time) int64 {
	remaining := goal - spent
	if remaining <= 0 {
		return 0
	}
	lastDay := time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, today.Location()).Day()
	daysLeft := lastDay - today.Day() + 1
	return decimal.NewFromInt(remaining).
		Div(decimal.NewFromInt(int64(daysLeft))).
		Floor().
		IntPart()
}
