package api

import (
	"context"
	"net/http"

	"stopusing/client/models"
)

func (c *Client) Me(ctx context.Context) (models.User, error) {
	return call[models.User](ctx, c, http.MethodGet, "/api/v1/users/me", nil, nil)
}

func (c *Client) UpdateUser(ctx context.Context, in models.UserInput) (models.User, error) {
	return call[models.User](ctx, c, http.MethodPut, "/api/v1/users", nil, in)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, "/api/logout", nil, nil)
	return err
}
