package sink

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo upserts documents with $set into a MongoDB database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to uri and pings the primary.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		return nil, eris.New("sink: mongo uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, eris.Wrap(err, "sink: mongo connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, eris.Wrap(err, "sink: mongo ping")
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

// Upsert implements Sink.
func (m *Mongo) Upsert(ctx context.Context, collection string, filter map[string]any, doc any) error {
	fields, err := setFields(doc)
	if err != nil {
		return err
	}
	_, err = m.db.Collection(collection).UpdateOne(ctx,
		bson.M(filter),
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return eris.Wrapf(err, "sink: mongo upsert into %s", collection)
	}
	return nil
}

// Close implements Sink.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// setFields converts doc to BSON through its JSON form so the stored field
// names match the JSON tags. Integers stay integers.
func setFields(doc any) (bson.M, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "sink: encode document")
	}
	var fields bson.M
	if err := bson.UnmarshalExtJSON(b, false, &fields); err != nil {
		return nil, eris.Wrap(err, "sink: convert document")
	}
	return fields, nil
}
