package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"stopusing/client/models"
)

const transactionsPath = "/api/v1/transactions"

func (c *Client) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	return call[[]models.Transaction](ctx, c, http.MethodGet, transactionsPath, filter.Query(), nil)
}

func (c *Client) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	return call[models.Transaction](ctx, c, http.MethodGet, fmt.Sprintf("%s/%d", transactionsPath, id), nil, nil)
}

func (c *Client) CreateTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	return call[models.Transaction](ctx, c, http.MethodPost, transactionsPath, nil, in)
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, in models.TransactionInput) (models.Transaction, error) {
	return call[models.Transaction](ctx, c, http.MethodPut, fmt.Sprintf("%s/%d", transactionsPath, id), nil, in)
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, fmt.Sprintf("%s/%d", transactionsPath, id), nil, nil)
	return err
}

// TransactionReport fetches the aggregate for one calendar month
// (yearMonth formatted "2006-01").
func (c *Client) TransactionReport(ctx context.Context, yearMonth string) (models.TransactionReport, error) {
	q := url.Values{}
	q.Set("date", yearMonth)
	return call[models.TransactionReport](ctx, c, http.MethodGet, transactionsPath+"/report", q, nil)
}

func (c *Client) TransactionCategories(ctx context.Context) ([]models.Category, error) {
	return call[[]models.Category](ctx, c, http.MethodGet, transactionsPath+"/categories", nil, nil)
}

// SendOverspendAlarm asks the backend to push an overspend alarm.
func (c *Client) SendOverspendAlarm(ctx context.Context, in models.AlarmInput) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, transactionsPath+"/alarm", nil, in)
	return err
}
