package store

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
)

// Mongo is a Store backed by a MongoDB collection, one document per room
// keyed by room id. Partial updates map directly onto $set with dotted field
// paths, appends onto $push, and subscriptions onto a change stream.
type Mongo struct {
	coll *mongo.Collection
}

type roomDoc struct {
	ID      string                         `bson:"_id"`
	Players map[string]*models.PlayerState `bson:"players"`
	Bullets []models.BulletState           `bson:"bullets"`
}

func NewMongo(client *mongo.Client, database string) *Mongo {
	return &Mongo{coll: client.Database(database).Collection("rooms")}
}

func (m *Mongo) Update(ctx context.Context, roomID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	set := bson.M{}
	push := bson.M{}
	for path, value := range fields {
		if union, ok := value.(ArrayUnion); ok {
			push[path] = bson.M{"$each": union.Values}
			continue
		}
		set[path] = value
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(push) > 0 {
		update["$push"] = push
	}

	_, err := m.coll.UpdateByID(ctx, roomID, update, options.Update().SetUpsert(true))
	return err
}

func (m *Mongo) Subscribe(ctx context.Context, roomID string, fn func(models.GameState)) (func(), error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: roomID}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := m.coll.Watch(streamCtx, pipeline, opts)
	if err != nil {
		cancel()
		return nil, err
	}

	// Deliver the current document before any change events.
	var doc roomDoc
	err = m.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&doc)
	if err != nil && err != mongo.ErrNoDocuments {
		cancel()
		stream.Close(context.Background())
		return nil, err
	}
	fn(docToState(doc))

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			var event struct {
				FullDocument roomDoc `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Debug().Err(err).Str("room", roomID).Msg("dropping undecodable change event")
				continue
			}
			fn(docToState(event.FullDocument))
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			log.Warn().Err(err).Str("room", roomID).Msg("room change stream closed")
		}
	}()

	return cancel, nil
}

func docToState(doc roomDoc) models.GameState {
	state := models.GameState{Players: doc.Players, Bullets: doc.Bullets}
	state.Normalize()
	for id, p := range state.Players {
		if p.ID == "" {
			p.ID = id
		}
	}
	return state
}
