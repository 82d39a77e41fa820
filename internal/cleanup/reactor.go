// Package cleanup cascades deletion of everything a customer owns: entity
// records per type, the identity link, and uploaded objects.
package cleanup

import (
	"context"
	"fmt"

	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"
	"github.com/lakeshore-insurance/claims-backend/internal/store"

	"go.uber.org/zap"
)

// Store is the slice of the entity store the reactor uses.
type Store interface {
	ResolveIdentity(ctx context.Context, token string) (string, error)
	ListCustomerKeys(ctx context.Context, customerID string) ([]store.ItemKey, error)
	DeleteKeys(ctx context.Context, keys []store.ItemKey) error
	DeleteIdentityLink(ctx context.Context, token string) error
}

// ObjectDeleter removes every object under a storage prefix.
type ObjectDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Result is the structured partial outcome returned to the caller. Failed
// steps are recorded, never retried.
type Result struct {
	CustomerID     string   `json:"customerId"`
	RecordsDeleted int      `json:"recordsDeleted"`
	ObjectsDeleted int      `json:"objectsDeleted"`
	Errors         []string `json:"errors,omitempty"`
}

// Reactor handles one authenticated deletion request.
type Reactor struct {
	Store   Store
	Objects ObjectDeleter
	Bus     bus.Publisher
	Log     *zap.Logger
}

// Handle resolves the customer from the identity token and cascades the
// delete. Each entity type is removed in its own batched write; a failed
// step is recorded in the result and the cascade continues.
func (r *Reactor) Handle(ctx context.Context, identityToken string) (Result, error) {
	customerID, err := r.Store.ResolveIdentity(ctx, identityToken)
	if err != nil {
		return Result{}, fmt.Errorf("resolve identity: %w", err)
	}
	res := Result{CustomerID: customerID}
	log := r.Log.With(zap.String("customerId", customerID))

	keys, err := r.Store.ListCustomerKeys(ctx, customerID)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("list records: %v", err))
		keys = nil
	}

	// One batched delete per entity type.
	byType := map[string][]store.ItemKey{}
	for _, k := range keys {
		byType[k.EntityType()] = append(byType[k.EntityType()], k)
	}
	for _, entity := range []string{"customer", "policy", "claim", "other"} {
		group := byType[entity]
		if len(group) == 0 {
			continue
		}
		if err := r.Store.DeleteKeys(ctx, group); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("delete %s records: %v", entity, err))
			continue
		}
		res.RecordsDeleted += len(group)
	}

	if err := r.Store.DeleteIdentityLink(ctx, identityToken); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("delete identity link: %v", err))
	} else {
		res.RecordsDeleted++
	}

	deleted, err := r.Objects.DeletePrefix(ctx, s3io.Prefix(customerID))
	res.ObjectsDeleted = deleted
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("delete objects: %v", err))
	}

	log.Info("customer cleanup finished",
		zap.Int("records", res.RecordsDeleted),
		zap.Int("objects", res.ObjectsDeleted),
		zap.Int("errors", len(res.Errors)))

	if err := r.Bus.Publish(ctx, events.TypeCustomerDeleted, events.SourceCleanup, events.CustomerDeleted{
		CustomerID: customerID,
		Errors:     res.Errors,
	}); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("publish deletion event: %v", err))
	}
	return res, nil
}
