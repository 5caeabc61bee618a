package store

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/explorer"
)

// MongoStore persists snapshots in a MongoDB collection.
//
// The tree is stored as its JSON wire form rather than native BSON so the
// unresolved-children sentinel survives the round trip unchanged.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDoc is the collection document shape.
type mongoDoc struct {
	ID        string             `bson:"_id"`
	Name      string             `bson:"name"`
	Tree      []byte             `bson:"tree"`
	View      explorer.ViewState `bson:"view"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and returns a snapshot store backed
// by the given database and collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Get retrieves a snapshot by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return docToSnapshot(doc)
}

// Put upserts a snapshot.
func (s *MongoStore) Put(ctx context.Context, snap *Snapshot) error {
	stamp(snap)
	doc, err := snapshotToDoc(snap)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

// Delete removes a snapshot.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns snapshot metadata, most recently updated first.
func (s *MongoStore) List(ctx context.Context) ([]Meta, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "name": 1, "updated_at": 1}).
		SetSort(bson.M{"updated_at": -1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var metas []Meta
	for cur.Next(ctx) {
		var doc struct {
			ID        string    `bson:"_id"`
			Name      string    `bson:"name"`
			UpdatedAt time.Time `bson:"updated_at"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		metas = append(metas, Meta{ID: doc.ID, Name: doc.Name, UpdatedAt: doc.UpdatedAt})
	}
	return metas, cur.Err()
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// snapshotToDoc converts a snapshot to its collection document.
func snapshotToDoc(snap *Snapshot) (mongoDoc, error) {
	tree, err := json.Marshal(snap.Tree)
	if err != nil {
		return mongoDoc{}, err
	}
	return mongoDoc{
		ID:        snap.ID,
		Name:      snap.Name,
		Tree:      tree,
		View:      snap.View,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}, nil
}

// docToSnapshot converts a collection document back to a snapshot.
func docToSnapshot(doc mongoDoc) (*Snapshot, error) {
	var tree domain.Node
	if err := json.Unmarshal(doc.Tree, &tree); err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:        doc.ID,
		Name:      doc.Name,
		Tree:      &tree,
		View:      doc.View,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
