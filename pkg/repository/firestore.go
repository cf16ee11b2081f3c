package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/interfaces"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	DefaultCollection = "oracle"
	DefaultSlotName   = "oracle_history"
)

// Firestore keeps the slot as one document. The journal is stored as an
// opaque JSON string so the document shape never depends on the journal
// schema.
type Firestore struct {
	client     *firestore.Client
	collection string
	docID      string
}

var _ interfaces.Slot = (*Firestore)(nil)

type slotDoc struct {
	Data      string    `firestore:"data"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// NewFirestore creates a Firestore backed slot
func NewFirestore(ctx context.Context, projectID, databaseID, collection, docID string, opts ...option.ClientOption) (*Firestore, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if docID == "" {
		docID = DefaultSlotName
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID))
	}

	return &Firestore{
		client:     client,
		collection: collection,
		docID:      docID,
	}, nil
}

func (r *Firestore) doc() *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(r.docID)
}

func (r *Firestore) Load(ctx context.Context) ([]byte, error) {
	snap, err := r.doc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get slot document",
			goerr.V("collection", r.collection),
			goerr.V("doc", r.docID))
	}

	var d slotDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode slot document", goerr.V("doc", r.docID))
	}
	return []byte(d.Data), nil
}

func (r *Firestore) Save(ctx context.Context, data []byte) error {
	d := slotDoc{
		Data:      string(data),
		UpdatedAt: time.Now(),
	}
	if _, err := r.doc().Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put slot document",
			goerr.V("collection", r.collection),
			goerr.V("doc", r.docID))
	}
	return nil
}

func (r *Firestore) Clear(ctx context.Context) error {
	if _, err := r.doc().Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to delete slot document", goerr.V("doc", r.docID))
	}
	return nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
