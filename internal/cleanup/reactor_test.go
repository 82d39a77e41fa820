package cleanup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/store"

	"go.uber.org/zap"
)

type fakeStore struct {
	identities map[string]string
	keys       []store.ItemKey

	deleteBatches [][]store.ItemKey
	failEntity    string
	linkDeleted   bool
}

func (f *fakeStore) ResolveIdentity(_ context.Context, token string) (string, error) {
	id, ok := f.identities[token]
	if !ok {
		return "", store.ErrNotFound
	}
	return id, nil
}

func (f *fakeStore) ListCustomerKeys(context.Context, string) ([]store.ItemKey, error) {
	return f.keys, nil
}

func (f *fakeStore) DeleteKeys(_ context.Context, keys []store.ItemKey) error {
	if f.failEntity != "" && len(keys) > 0 && keys[0].EntityType() == f.failEntity {
		return errors.New("batch delete failed")
	}
	f.deleteBatches = append(f.deleteBatches, keys)
	return nil
}

func (f *fakeStore) DeleteIdentityLink(context.Context, string) error {
	f.linkDeleted = true
	return nil
}

type fakeObjects struct {
	deleted int
	err     error
}

func (f *fakeObjects) DeletePrefix(context.Context, string) (int, error) {
	return f.deleted, f.err
}

func customerKeys() []store.ItemKey {
	return []store.ItemKey{
		{PK: "CUSTOMER#c1", SK: store.SKProfile},
		{PK: "CUSTOMER#c1", SK: "DOCUMENT#DRIVERS_LICENSE"},
		{PK: "CUSTOMER#c1", SK: "POLICY#p1"},
		{PK: "CUSTOMER#c1", SK: "POLICY#p2"},
		{PK: "CUSTOMER#c1", SK: "CLAIM#cl1"},
	}
}

func TestHandleCascades(t *testing.T) {
	s := &fakeStore{identities: map[string]string{"token-1": "c1"}, keys: customerKeys()}
	objects := &fakeObjects{deleted: 3}
	b := bus.NewMemory()
	r := &Reactor{Store: s, Objects: objects, Bus: b, Log: zap.NewNop()}

	res, err := r.Handle(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want none", res.Errors)
	}
	// 5 records + identity link.
	if res.RecordsDeleted != 6 {
		t.Errorf("recordsDeleted = %d, want 6", res.RecordsDeleted)
	}
	if res.ObjectsDeleted != 3 {
		t.Errorf("objectsDeleted = %d, want 3", res.ObjectsDeleted)
	}
	if !s.linkDeleted {
		t.Error("identity link not deleted")
	}

	// One batch per entity type, each batch homogeneous.
	if len(s.deleteBatches) != 3 {
		t.Fatalf("issued %d delete batches, want 3", len(s.deleteBatches))
	}
	for _, batch := range s.deleteBatches {
		first := batch[0].EntityType()
		for _, k := range batch {
			if k.EntityType() != first {
				t.Errorf("mixed batch: %v", batch)
			}
		}
	}

	published := b.Published()
	if len(published) != 1 || published[0].DetailType != events.TypeCustomerDeleted {
		t.Fatalf("published %v, want one Customer.Deleted", published)
	}
}

func TestHandlePartialFailureContinues(t *testing.T) {
	s := &fakeStore{identities: map[string]string{"token-1": "c1"}, keys: customerKeys(), failEntity: "policy"}
	objects := &fakeObjects{deleted: 1, err: errors.New("list denied")}
	b := bus.NewMemory()
	r := &Reactor{Store: s, Objects: objects, Bus: b, Log: zap.NewNop()}

	res, err := r.Handle(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %v, want the policy batch and object failures", res.Errors)
	}
	var sawPolicy, sawObjects bool
	for _, e := range res.Errors {
		if strings.Contains(e, "policy") {
			sawPolicy = true
		}
		if strings.Contains(e, "objects") {
			sawObjects = true
		}
	}
	if !sawPolicy || !sawObjects {
		t.Errorf("errors = %v, want both failing steps identified", res.Errors)
	}
	// Customer and claim batches plus the identity link still went through.
	if res.RecordsDeleted != 4 {
		t.Errorf("recordsDeleted = %d, want 4", res.RecordsDeleted)
	}
	if !s.linkDeleted {
		t.Error("identity link should still be deleted after a batch failure")
	}
}

func TestHandleUnknownIdentity(t *testing.T) {
	r := &Reactor{Store: &fakeStore{identities: map[string]string{}}, Objects: &fakeObjects{}, Bus: bus.NewMemory(), Log: zap.NewNop()}
	if _, err := r.Handle(context.Background(), "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
