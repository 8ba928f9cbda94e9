package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Arman-Bisht/med-connect/internal/store"
)

// stubStore feeds the hub hand-rolled snapshot channels.
type stubStore struct {
	chans map[string]chan store.Snapshot
}

func newStubStore() *stubStore {
	s := &stubStore{chans: map[string]chan store.Snapshot{}}
	for _, c := range []string{store.Patients, store.Users, store.Cases} {
		s.chans[c] = make(chan store.Snapshot, 4)
	}
	return s
}

func (s *stubStore) Subscribe(_ context.Context, collection string) (<-chan store.Snapshot, error) {
	return s.chans[collection], nil
}

func (s *stubStore) List(context.Context, string) ([]bson.M, error) { return nil, nil }
func (s *stubStore) GetOne(context.Context, string, string) (bson.M, error) {
	return nil, store.ErrNotFound{}
}
func (s *stubStore) Create(context.Context, string, bson.M) (string, error) { return "", nil }
func (s *stubStore) Update(context.Context, string, string, bson.M) error   { return nil }
func (s *stubStore) Append(context.Context, string, string, string, any, bson.M) error {
	return nil
}
func (s *stubStore) FindOneBy(context.Context, string, string, any) (bson.M, error) {
	return nil, store.ErrNotFound{}
}

func testClient(h *Hub) *Client {
	return &Client{hub: h, send: make(chan []byte, 16)}
}

func receive(t *testing.T, c *Client) store.Snapshot {
	t.Helper()
	select {
	case payload := <-c.send:
		var snap store.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return store.Snapshot{}
	}
}

func TestHubBroadcastsSnapshots(t *testing.T) {
	st := newStubStore()
	h := NewHub(st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	client := testClient(h)
	h.join(client)
	defer h.leave(client)

	st.chans[store.Cases] <- store.Snapshot{
		Collection: store.Cases,
		Docs:       []bson.M{{"_id": "c1", "status": "Assigned"}},
	}

	snap := receive(t, client)
	if snap.Collection != store.Cases {
		t.Errorf("collection = %q", snap.Collection)
	}
	if len(snap.Docs) != 1 || snap.Docs[0]["_id"] != "c1" {
		t.Errorf("docs = %v", snap.Docs)
	}
}

func TestHubReplaysLatestOnJoin(t *testing.T) {
	st := newStubStore()
	h := NewHub(st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	first := testClient(h)
	h.join(first)
	st.chans[store.Users] <- store.Snapshot{
		Collection: store.Users,
		Docs:       []bson.M{{"_id": "u-carter"}},
	}
	receive(t, first)
	h.leave(first)

	// The snapshot was cached before the first delivery, so a later join
	// starts from the same state without waiting for a change.
	late := testClient(h)
	h.join(late)
	defer h.leave(late)

	snap := receive(t, late)
	if snap.Collection != store.Users {
		t.Errorf("collection = %q", snap.Collection)
	}
}

// No credential material may ever reach a connected client, neither from the
// users collection nor from the participant profiles embedded in cases.
func TestHubRedactsPasswordHashes(t *testing.T) {
	const hash = "$2a$10$secretbcrypt"

	st := newStubStore()
	h := NewHub(st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	client := testClient(h)
	h.join(client)
	defer h.leave(client)

	st.chans[store.Users] <- store.Snapshot{
		Collection: store.Users,
		Docs: []bson.M{{
			"_id":           "u-carter",
			"email":         "emily.carter@med.us",
			"password_hash": hash,
		}},
	}
	snap := receive(t, client)
	if _, present := snap.Docs[0]["password_hash"]; present {
		t.Error("users snapshot carries password_hash")
	}
	if snap.Docs[0]["email"] != "emily.carter@med.us" {
		t.Errorf("redaction dropped unrelated fields: %v", snap.Docs[0])
	}

	st.chans[store.Cases] <- store.Snapshot{
		Collection: store.Cases,
		Docs: []bson.M{{
			"_id":        "c1",
			"status":     "Assigned",
			"createdBy":  bson.M{"_id": "u-carter", "password_hash": hash},
			"assignedTo": bson.M{"_id": "u-mehta", "password_hash": hash},
			"chat": bson.A{
				bson.M{"id": "m1", "senderId": "u-carter", "content": "hello"},
			},
		}},
	}
	snap = receive(t, client)
	for _, field := range []string{"createdBy", "assignedTo"} {
		profile, _ := snap.Docs[0][field].(map[string]any)
		if profile == nil {
			t.Fatalf("case snapshot lost %s: %v", field, snap.Docs[0])
		}
		if _, present := profile["password_hash"]; present {
			t.Errorf("case snapshot carries password_hash inside %s", field)
		}
	}
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(newStubStore())
	client := &Client{hub: h, send: make(chan []byte, 1)}
	h.join(client)
	defer h.leave(client)

	// The buffer holds one payload; further enqueues must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			client.enqueue([]byte(`{"collection":"cases"}`))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a slow client")
	}
}
