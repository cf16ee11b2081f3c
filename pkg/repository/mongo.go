package repository

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo keeps the slot as one document of a MongoDB collection, keyed by
// the slot name
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	name       string
}

var _ interfaces.Slot = (*Mongo)(nil)

type mongoSlotDoc struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongo connects to uri and uses database.collection. Empty collection
// and name fall back to DefaultCollection and DefaultSlotName.
func NewMongo(ctx context.Context, uri, database, collection, name string) (*Mongo, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if name == "" {
		name = DefaultSlotName
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect mongodb", goerr.V("database", database))
	}

	return &Mongo{
		client:     client,
		collection: client.Database(database).Collection(collection),
		name:       name,
	}, nil
}

func (r *Mongo) Load(ctx context.Context) ([]byte, error) {
	var doc mongoSlotDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": r.name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find slot document", goerr.V("name", r.name))
	}
	return doc.Data, nil
}

func (r *Mongo) Save(ctx context.Context, data []byte) error {
	doc := mongoSlotDoc{
		ID:        r.name,
		Data:      data,
		UpdatedAt: time.Now(),
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": r.name}, bson.M{"$set": doc}, opts); err != nil {
		return goerr.Wrap(err, "failed to upsert slot document", goerr.V("name", r.name))
	}
	return nil
}

func (r *Mongo) Clear(ctx context.Context) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": r.name}); err != nil {
		return goerr.Wrap(err, "failed to delete slot document", goerr.V("name", r.name))
	}
	return nil
}

// Close disconnects the client
func (r *Mongo) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil {
		return goerr.Wrap(err, "failed to disconnect mongodb")
	}
	return nil
}
