package services

import (
	"context"
	"strconv"
	"time"

	"stopusing/client/api"
	"stopusing/client/cache"
	"stopusing/client/models"
	"stopusing/client/storage"
	"stopusing/client/transport"
	"stopusing/client/validation"
)

const transactionsNamespace = "transactions"

func listKey(f models.TransactionFilter) cache.Key {
	return cache.Key{Namespace: transactionsNamespace, Ref: "list:" + f.Key()}
}

func detailKey(id int64) cache.Key {
	return cache.Key{Namespace: transactionsNamespace, Ref: "detail:" + strconv.FormatInt(id, 10)}
}

// Coordinator owns the cached view of the user's transactions and keeps it
// converging to server truth across mutations: it snapshots the cache,
// applies the intended outcome optimistically, dispatches the remote call,
// and either invalidates (success) or restores the snapshot (failure).
//
// Mutations are not serialized against each other. Two concurrent mutations
// touching the same keys settle last-write-wins, and the invalidation pass
// each mutation ends with resolves any interim divergence on the next read.
type Coordinator struct {
	store    *cache.Store
	api      *api.Client
	local    *storage.Store
	notifier Notifier
	now      func() time.Time
	tempID   func() int64
}

type Option func(*Coordinator)

// WithNotifier replaces the default log-backed notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithLocalStore attaches the persistent session store used for the monthly
// goal fallback.
func WithLocalStore(s *storage.Store) Option {
	return func(c *Coordinator) { c.local = s }
}

// WithClock fixes the coordinator's clock. Tests use it to get deterministic
// placeholder timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func NewCoordinator(store *cache.Store, apiClient *api.Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		api:      apiClient,
		notifier: logNotifier{},
		now:      time.Now,
	}
	c.tempID = func() int64 { return -c.now().UnixMilli() }
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateTransaction validates the input, shows a placeholder transaction in
// every cached list immediately, then dispatches the creation. The
// placeholder carries a negative client-generated id and is replaced by
// server truth on the invalidation-triggered refetch.
func (c *Coordinator) CreateTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	if err := validation.CheckTransactionInput(in); err != nil {
		return models.Transaction{}, err
	}

	snap := cache.Capture(c.store, transactionsNamespace)
	c.applyToLists(func(list []models.Transaction) []models.Transaction {
		return append([]models.Transaction{c.placeholder(in)}, list...)
	})

	created, err := c.api.CreateTransaction(ctx, in)
	if err != nil {
		snap.Restore(c.store)
		c.notifier.Error(transport.ErrorMessage(err, msgGenericFailure))
		return models.Transaction{}, err
	}

	c.store.Invalidate(transactionsNamespace)
	c.notifier.Success(msgCreated)
	return created, nil
}

// UpdateTransaction rewrites the transaction in every cached list and in its
// detail entry before the remote call resolves. The namespace is invalidated
// regardless of outcome so a refetch reconciles even if success and failure
// handling ever diverge.
func (c *Coordinator) UpdateTransaction(ctx context.Context, id int64, in models.TransactionInput) (models.Transaction, error) {
	if err := validation.CheckTransactionInput(in); err != nil {
		return models.Transaction{}, err
	}
	defer c.store.Invalidate(transactionsNamespace)

	snap := cache.Capture(c.store, transactionsNamespace)
	c.applyToLists(func(list []models.Transaction) []models.Transaction {
		out := make([]models.Transaction, len(list))
		for i, tx := range list {
			if tx.ID == id {
				tx = c.merge(tx, in)
			}
			out[i] = tx
		}
		return out
	})
	if v, ok := c.store.Get(detailKey(id)); ok {
		if tx, ok := v.(models.Transaction); ok {
			c.store.Set(detailKey(id), c.merge(tx, in))
		}
	}

	updated, err := c.api.UpdateTransaction(ctx, id, in)
	if err != nil {
		snap.Restore(c.store)
		c.notifier.Error(transport.ErrorMessage(err, msgGenericFailure))
		return models.Transaction{}, err
	}

	c.notifier.Success(msgUpdated)
	return updated, nil
}

// DeleteTransaction removes the transaction from every cached list and
// evicts its detail entry, restoring both if the remote deletion fails.
func (c *Coordinator) DeleteTransaction(ctx context.Context, id int64) error {
	snap := cache.Capture(c.store, transactionsNamespace)
	c.applyToLists(func(list []models.Transaction) []models.Transaction {
		out := list[:0:0]
		for _, tx := range list {
			if tx.ID != id {
				out = append(out, tx)
			}
		}
		return out
	})
	c.store.Delete(detailKey(id))

	if err := c.api.DeleteTransaction(ctx, id); err != nil {
		snap.Restore(c.store)
		c.notifier.Error(transport.ErrorMessage(err, msgGenericFailure))
		return err
	}

	c.store.Invalidate(transactionsNamespace)
	c.notifier.Success(msgDeleted)
	return nil
}

// Transactions serves the cached list when it is present and fresh,
// refetching otherwise.
func (c *Coordinator) Transactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	k := listKey(f)
	if v, ok := c.store.Get(k); ok && !c.store.IsStale(k) {
		if list, ok := v.([]models.Transaction); ok {
			return list, nil
		}
	}
	list, err := c.api.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	c.store.Set(k, list)
	return list, nil
}

// Transaction serves the cached detail entry when present and fresh,
// refetching otherwise.
func (c *Coordinator) Transaction(ctx context.Context, id int64) (models.Transaction, error) {
	k := detailKey(id)
	if v, ok := c.store.Get(k); ok && !c.store.IsStale(k) {
		if tx, ok := v.(models.Transaction); ok {
			return tx, nil
		}
	}
	tx, err := c.api.GetTransaction(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	c.store.Set(k, tx)
	return tx, nil
}

// Logout ends the session server-side, clears local credentials and drops
// the cache.
func (c *Coordinator) Logout(ctx context.Context) error {
	err := c.api.Logout(ctx)
	if c.local != nil {
		if clearErr := c.local.ClearToken(); clearErr != nil && err == nil {
			err = clearErr
		}
	}
	c.store.Reset()
	return err
}

func (c *Coordinator) applyToLists(apply func([]models.Transaction) []models.Transaction) {
	for _, k := range c.store.Keys(transactionsNamespace) {
		v, ok := c.store.Get(k)
		if !ok {
			continue
		}
		list, ok := v.([]models.Transaction)
		if !ok {
			continue
		}
		c.store.Set(k, apply(list))
	}
}

func (c *Coordinator) placeholder(in models.TransactionInput) models.Transaction {
	now := c.now()
	startedAt := now
	if in.StartedAt != "" {
		if t, err := time.Parse(time.RFC3339, in.StartedAt); err == nil {
			startedAt = t
		}
	}
	txType := in.Type
	if txType == "" {
		txType = models.TypeNone
	}
	return models.Transaction{
		ID:         c.tempID(),
		Price:      in.Price,
		Title:      in.Title,
		Type:       txType,
		Category:   in.Category,
		StartedAt:  startedAt,
		SplitCount: in.SplitCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (c *Coordinator) merge(tx models.Transaction, in models.TransactionInput) models.Transaction {
	tx.Price = in.Price
	tx.Title = in.Title
	if in.Type != "" {
		tx.Type = in.Type
	}
	tx.Category = in.Category
	if in.StartedAt != "" {
		if t, err := time.Parse(time.RFC3339, in.StartedAt); err == nil {
			tx.StartedAt = t
		}
	}
	tx.SplitCount = in.SplitCount
	tx.UpdatedAt = c.now()
	return tx
}
