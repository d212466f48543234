// Package client is the Go client for the StopUsing backend: a typed domain
// API over a retrying HTTP transport, an optimistic query cache that rolls
// back on failure, and a small encrypted local store for session state.
package client

import (
	"stopusing/client/api"
	"stopusing/client/cache"
	"stopusing/client/config"
	"stopusing/client/services"
	"stopusing/client/storage"
	"stopusing/client/transport"
)

// Session bundles everything one signed-in user needs. Create one per
// application session and Close it on sign-out.
type Session struct {
	Config      config.Config
	Local       *storage.Store
	Cache       *cache.Store
	API         *api.Client
	Coordinator *services.Coordinator
}

// Open assembles a session from configuration. The transport reads its
// bearer token from the local store, and a 401 response clears the stored
// token; compose the packages directly to override that policy (see
// transport.IgnoreUnauthorized).
func Open(cfg config.Config, encryptionKey string, opts ...services.Option) (*Session, error) {
	local, err := storage.Open(cfg.SessionStorePath, encryptionKey)
	if err != nil {
		return nil, err
	}

	tr := transport.New(transport.Config{
		BaseURL: cfg.BaseURL(),
		Tokens:  local,
		OnUnauthorized: func() {
			_ = local.ClearToken()
		},
		Retries:     cfg.Retries,
		Timeout:     cfg.Timeout(),
		BackoffBase: cfg.Backoff(),
	})

	apiClient := api.New(tr)
	store := cache.NewStore()
	opts = append([]services.Option{services.WithLocalStore(local)}, opts...)
	coord := services.NewCoordinator(store, apiClient, opts...)

	return &Session{
		Config:      cfg,
		Local:       local,
		Cache:       store,
		API:         apiClient,
		Coordinator: coord,
	}, nil
}

// Close drops the cached view and releases the local store.
func (s *Session) Close() error {
	s.Cache.Reset()
	return s.Local.Close()
}
