package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store on a mongo.Database. Subscriptions ride change
// streams: each event triggers a fresh full-collection read, mirroring the
// replace-on-receive contract.
type Mongo struct {
	db *mongo.Database
}

// NewMongo wraps an already-connected database.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	cs, err := m.db.Collection(collection).Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}

	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		defer cs.Close(context.Background())

		push := func() {
			snap, err := m.readAll(ctx, collection)
			if err != nil {
				log.Printf("❌ Snapshot read for %s failed: %v", collection, err)
				return
			}
			// Drop the stale pending snapshot so a slow receiver always
			// gets the latest one.
			select {
			case out <- snap:
			default:
				select {
				case <-out:
				default:
				}
				out <- snap
			}
		}

		push()
		for cs.Next(ctx) {
			push()
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			log.Printf("❌ Change stream for %s ended: %v", collection, err)
		}
	}()
	return out, nil
}

func (m *Mongo) readAll(ctx context.Context, collection string) (Snapshot, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return Snapshot{}, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return Snapshot{}, err
	}
	for _, doc := range docs {
		normalizeID(doc)
	}
	return Snapshot{Collection: collection, Docs: docs}, nil
}

func (m *Mongo) List(ctx context.Context, collection string) ([]bson.M, error) {
	snap, err := m.readAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return snap.Docs, nil
}

func (m *Mongo) GetOne(ctx context.Context, collection, id string) (bson.M, error) {
	var doc bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": idValue(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound{Collection: collection, Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	normalizeID(doc)
	return doc, nil
}

func (m *Mongo) FindOneBy(ctx context.Context, collection, field string, value any) (bson.M, error) {
	var doc bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{field: value}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound{Collection: collection, Key: fmt.Sprintf("%s=%v", field, value)}
	}
	if err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", collection, field, err)
	}
	normalizeID(doc)
	return doc, nil
}

func (m *Mongo) Create(ctx context.Context, collection string, doc bson.M) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return fmt.Sprintf("%v", id), nil
	}
}

func (m *Mongo) Update(ctx context.Context, collection, id string, patch bson.M) error {
	res, err := m.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": idValue(id)}, bson.M{"$set": patch})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound{Collection: collection, Key: id}
	}
	return nil
}

func (m *Mongo) Append(ctx context.Context, collection, id, field string, element any, set bson.M) error {
	update := bson.M{"$push": bson.M{field: element}}
	if len(set) > 0 {
		update["$set"] = set
	}
	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": idValue(id)}, update)
	if err != nil {
		return fmt.Errorf("append to %s/%s.%s: %w", collection, id, field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound{Collection: collection, Key: id}
	}
	return nil
}

// idValue accepts both backend-assigned ObjectIDs (hex) and opaque string
// ids such as auth uids.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func normalizeID(doc bson.M) {
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		doc["_id"] = oid.Hex()
	}
}
