package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Arman-Bisht/med-connect/internal/store"
)

// mockStore lets each test supply only the store behavior it needs.
type mockStore struct {
	SubscribeFunc func(ctx context.Context, collection string) (<-chan store.Snapshot, error)
	ListFunc      func(ctx context.Context, collection string) ([]bson.M, error)
	GetOneFunc    func(ctx context.Context, collection, id string) (bson.M, error)
	CreateFunc    func(ctx context.Context, collection string, doc bson.M) (string, error)
	UpdateFunc    func(ctx context.Context, collection, id string, patch bson.M) error
	AppendFunc    func(ctx context.Context, collection, id, field string, element any, set bson.M) error
	FindOneByFunc func(ctx context.Context, collection, field string, value any) (bson.M, error)
}

func (m *mockStore) Subscribe(ctx context.Context, collection string) (<-chan store.Snapshot, error) {
	return m.SubscribeFunc(ctx, collection)
}

func (m *mockStore) List(ctx context.Context, collection string) ([]bson.M, error) {
	return m.ListFunc(ctx, collection)
}

func (m *mockStore) GetOne(ctx context.Context, collection, id string) (bson.M, error) {
	return m.GetOneFunc(ctx, collection, id)
}

func (m *mockStore) Create(ctx context.Context, collection string, doc bson.M) (string, error) {
	return m.CreateFunc(ctx, collection, doc)
}

func (m *mockStore) Update(ctx context.Context, collection, id string, patch bson.M) error {
	return m.UpdateFunc(ctx, collection, id, patch)
}

func (m *mockStore) Append(ctx context.Context, collection, id, field string, element any, set bson.M) error {
	return m.AppendFunc(ctx, collection, id, field, element, set)
}

func (m *mockStore) FindOneBy(ctx context.Context, collection, field string, value any) (bson.M, error) {
	return m.FindOneByFunc(ctx, collection, field, value)
}

// emptyStore behaves like a store with no users in it.
func emptyStore() *mockStore {
	return &mockStore{
		FindOneByFunc: func(ctx context.Context, collection, field string, value any) (bson.M, error) {
			return nil, store.ErrNotFound{Collection: collection, Key: field}
		},
		CreateFunc: func(ctx context.Context, collection string, doc bson.M) (string, error) {
			return doc["_id"].(string), nil
		},
	}
}
