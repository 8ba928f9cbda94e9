package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Arman-Bisht/med-connect/internal/auth"
	"github.com/Arman-Bisht/med-connect/internal/models"
	"github.com/Arman-Bisht/med-connect/internal/snapshot"
	"github.com/Arman-Bisht/med-connect/internal/store"
)

var (
	// Tokens are issued at the frozen testNow but the jwt library checks
	// expiry against the real clock, so the fixture TTL must span from
	// testNow to any plausible run date.
	testJWT = auth.NewJWT("test-secret", 100*365*24*time.Hour)
	testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
)

// memStore is an in-memory document store for handler tests. It mirrors the
// real store's contract: ids under "_id", array appends paired with field
// sets in one write.
type memStore struct {
	mu   sync.Mutex
	seq  int
	data map[string]map[string]bson.M
}

func newMemStore() *memStore {
	return &memStore{data: map[string]map[string]bson.M{}}
}

func (m *memStore) coll(name string) map[string]bson.M {
	if m.data[name] == nil {
		m.data[name] = map[string]bson.M{}
	}
	return m.data[name]
}

func (m *memStore) put(collection, id string, doc bson.M) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc["_id"] = id
	m.coll(collection)[id] = doc
}

func (m *memStore) Subscribe(ctx context.Context, collection string) (<-chan store.Snapshot, error) {
	docs, _ := m.List(ctx, collection)
	ch := make(chan store.Snapshot, 1)
	ch <- store.Snapshot{Collection: collection, Docs: docs}
	return ch, nil
}

func (m *memStore) List(_ context.Context, collection string) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]bson.M, 0, len(m.coll(collection)))
	for _, doc := range m.coll(collection) {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *memStore) GetOne(_ context.Context, collection, id string) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, found := m.coll(collection)[id]
	if !found {
		return nil, store.ErrNotFound{Collection: collection, Key: id}
	}
	return doc, nil
}

func (m *memStore) Create(_ context.Context, collection string, doc bson.M) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := doc["_id"].(string)
	if id == "" {
		m.seq++
		id = fmt.Sprintf("%s-%d", collection, m.seq)
		doc["_id"] = id
	}
	m.coll(collection)[id] = doc
	return id, nil
}

func (m *memStore) FindOneBy(_ context.Context, collection, field string, value any) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.coll(collection) {
		if doc[field] == value {
			return doc, nil
		}
	}
	return nil, store.ErrNotFound{Collection: collection, Key: fmt.Sprintf("%s=%v", field, value)}
}

func (m *memStore) Update(_ context.Context, collection, id string, patch bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, found := m.coll(collection)[id]
	if !found {
		return store.ErrNotFound{Collection: collection, Key: id}
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (m *memStore) Append(_ context.Context, collection, id, field string, element any, set bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, found := m.coll(collection)[id]
	if !found {
		return store.ErrNotFound{Collection: collection, Key: id}
	}
	arr, _ := doc[field].(bson.A)
	doc[field] = append(arr, element)
	for k, v := range set {
		doc[k] = v
	}
	return nil
}

// Fixture physicians on both sides of the network.
func referrer() *models.User {
	return &models.User{
		ID: "u-carter", Name: "Dr. Emily Carter", Email: "emily.carter@med.us",
		Specialty: models.Cardiology, Country: models.CountryUSA,
		Experience: 12, Availability: models.AvailabilityAvailable,
	}
}

func specialist() *models.User {
	return &models.User{
		ID: "u-mehta", Name: "Dr. Arjun Mehta", Email: "arjun.mehta@med.in",
		Specialty: models.Cardiology, Country: models.CountryIndia,
		Experience: 9, Availability: models.AvailabilityAvailable,
	}
}

func fixturePatient() *models.Patient {
	return &models.Patient{
		ID: "p1", Name: "Ravi Kumar", Age: 58, Gender: "Male", BloodType: "B+",
		MedicalHistory: []string{"Hypertension"},
		DoctorNotes:    "Recurring chest pain on exertion.",
	}
}

func seedUser(t *testing.T, st *memStore, u *models.User) {
	t.Helper()
	st.put(store.Users, u.ID, bson.M{
		"name":          u.Name,
		"email":         u.Email,
		"password_hash": "$2a$10$storedbcrypt",
		"specialty":     string(u.Specialty),
		"country":       u.Country,
		"experience":    u.Experience,
		"availability":  u.Availability,
	})
}

func seedCase(t *testing.T, st *memStore, cs *models.Case) {
	t.Helper()
	doc, err := snapshot.EncodeCase(cs)
	if err != nil {
		t.Fatalf("encode case %s: %v", cs.ID, err)
	}
	st.put(store.Cases, cs.ID, doc)
}

// newTestRouter wires the case and user routes the way the server does,
// behind the real token middleware, on a seeded in-memory store.
func newTestRouter(t *testing.T, st *memStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	seedUser(t, st, referrer())
	seedUser(t, st, specialist())
	st.put(store.Patients, "p1", bson.M{
		"name": "Ravi Kumar", "age": 58, "gender": "Male", "bloodType": "B+",
		"medicalHistory": bson.A{"Hypertension"},
		"doctorNotes":    "Recurring chest pain on exertion.",
	})

	caseHandler := NewCaseHandler(st, nil)
	caseHandler.now = func() time.Time { return testNow }
	userHandler := NewUserHandler(st)

	r := gin.New()
	api := r.Group("/api/v1", auth.Middleware(testJWT))
	api.GET("/users", userHandler.List)
	api.GET("/specialists", userHandler.Specialists)
	api.POST("/cases", caseHandler.Create)
	api.GET("/cases", caseHandler.List)
	api.GET("/cases/:id", caseHandler.Get)
	api.POST("/cases/:id/messages", caseHandler.AppendMessage)
	api.POST("/cases/:id/status", caseHandler.ChangeStatus)
	api.POST("/cases/:id/calls", caseHandler.ProposeCall)
	api.POST("/cases/:id/calls/:callID/confirm", caseHandler.ConfirmCall)
	api.POST("/cases/:id/calls/:callID/cancel", caseHandler.CancelCall)
	api.POST("/cases/:id/calls/:callID/complete", caseHandler.CompleteCall)
	return r
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := testJWT.Issue(u.ID, u.Country, testNow)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// do performs one authenticated request and decodes the JSON response body.
func do(t *testing.T, r *gin.Engine, as *models.User, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, as))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, decoded
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	return d
}
