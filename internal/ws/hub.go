// Package ws pushes full-collection snapshots to connected portal clients
// over WebSocket. Each subscribed collection delivers its current state on
// connect and again on every change; clients replace their view on receive.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Arman-Bisht/med-connect/internal/store"
)

// Hub fans one store subscription per collection out to every client.
type Hub struct {
	st store.Store

	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string][]byte
}

func NewHub(st store.Store) *Hub {
	return &Hub{
		st:      st,
		clients: make(map[*Client]bool),
		latest:  make(map[string][]byte),
	}
}

// Run subscribes to the portal collections and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for _, collection := range []string{store.Patients, store.Users, store.Cases} {
		ch, err := h.st.Subscribe(ctx, collection)
		if err != nil {
			log.Printf("❌ Subscribe %s failed; live updates for it disabled: %v", collection, err)
			continue
		}
		go h.pump(ch)
	}
	<-ctx.Done()
}

func (h *Hub) pump(ch <-chan store.Snapshot) {
	for snap := range ch {
		for _, doc := range snap.Docs {
			redact(doc)
		}
		payload, err := json.Marshal(snap)
		if err != nil {
			log.Printf("❌ Encode %s snapshot: %v", snap.Collection, err)
			continue
		}
		h.mu.Lock()
		h.latest[snap.Collection] = payload
		clients := make([]*Client, 0, len(h.clients))
		for c := range h.clients {
			clients = append(clients, c)
		}
		h.mu.Unlock()

		for _, c := range clients {
			c.enqueue(payload)
		}
	}
}

// redact strips credential material from a document before it leaves the
// backend. Case documents embed participant profiles, so nested documents
// and arrays are walked too.
func redact(doc bson.M) {
	delete(doc, "password_hash")
	for _, v := range doc {
		switch inner := v.(type) {
		case bson.M:
			redact(inner)
		case bson.A:
			for _, e := range inner {
				if m, ok := e.(bson.M); ok {
					redact(m)
				}
			}
		}
	}
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	// Replay the latest known snapshots so a fresh client starts complete.
	replay := make([][]byte, 0, len(h.latest))
	for _, payload := range h.latest {
		replay = append(replay, payload)
	}
	h.mu.Unlock()

	for _, payload := range replay {
		c.enqueue(payload)
	}
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
