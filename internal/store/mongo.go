package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"traffic-ca/internal/road"
	"traffic-ca/internal/sim"
)

// DefaultCollection is the collection snapshots are written to.
const DefaultCollection = "snapshots"

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

type snapshotDoc struct {
	Road      string    `bson:"road"`
	Tick      int       `bson:"tick"`
	RunID     string    `bson:"run_id,omitempty"`
	Cells     []int     `bson:"cells"`
	Cars      int       `bson:"cars"`
	CreatedAt time.Time `bson:"created_at"`
}

// Mongo stores one document per (road, tick) in a MongoDB collection.
type Mongo struct {
	Collection *mongo.Collection
}

// NewMongo wraps the snapshots collection of the given database.
func NewMongo(client *mongo.Client, database string) *Mongo {
	return &Mongo{Collection: client.Database(database).Collection(DefaultCollection)}
}

// EnsureIndexes creates the unique (road, tick) index.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	if m.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := m.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "road", Value: 1}, {Key: "tick", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Write upserts the snapshot for (road, tick).
func (m *Mongo) Write(ctx context.Context, roadName string, tick int, st *road.State) error {
	return m.write(ctx, "", roadName, tick, st)
}

// Emit lets the store act directly as a simulator sink, recording the run ID.
func (m *Mongo) Emit(ctx context.Context, snap sim.Snapshot) error {
	return m.write(ctx, snap.RunID, snap.Road, snap.Tick, snap.State)
}

func (m *Mongo) write(ctx context.Context, runID, roadName string, tick int, st *road.State) error {
	if m.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if err := checkKey(roadName, tick); err != nil {
		return err
	}
	doc := snapshotDoc{
		Road:      roadName,
		Tick:      tick,
		RunID:     runID,
		Cells:     st.Cells(),
		Cars:      st.CarCount(),
		CreatedAt: time.Now().UTC(),
	}
	filter := bson.M{"road": roadName, "tick": tick}
	_, err := m.Collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	return err
}

// Read fetches the snapshot for (road, tick).
func (m *Mongo) Read(ctx context.Context, roadName string, tick int) (*road.State, error) {
	if m.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var doc snapshotDoc
	err := m.Collection.FindOne(ctx, bson.M{"road": roadName, "tick": tick}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(roadName, tick)
	}
	if err != nil {
		return nil, err
	}
	return road.StateFromCells(doc.Cells)
}

// Ticks lists the stored ticks of a road.
func (m *Mongo) Ticks(ctx context.Context, roadName string) ([]int, error) {
	if m.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().
		SetProjection(bson.M{"tick": 1, "_id": 0}).
		SetSort(bson.D{{Key: "tick", Value: 1}})
	cursor, err := m.Collection.Find(ctx, bson.M{"road": roadName}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rows []struct {
		Tick int `bson:"tick"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ticks := make([]int, len(rows))
	for i, r := range rows {
		ticks[i] = r.Tick
	}
	return ticks, nil
}

// DeleteRoad removes every snapshot of a road.
func (m *Mongo) DeleteRoad(ctx context.Context, roadName string) error {
	if m.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := m.Collection.DeleteMany(ctx, bson.M{"road": roadName})
	return err
}
