package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
	"github.com/mapleleafu/blastarena/blastarena-backend/repository"
)

// archiveMatch persists an abandoned room's final state: the full snapshot
// to MongoDB, a summary row to PostgreSQL. Both writes are best-effort;
// failures are logged and never retried.
func archiveMatch(roomID string, final models.GameState, startedAt time.Time) {
	if len(final.Players) == 0 {
		return
	}
	finishedAt := time.Now()

	matchID := saveMatchToMongoDB(roomID, final, finishedAt)
	if matchID == "" {
		matchID = uuid.New().String()
	}
	saveMatchToPostgres(matchID, roomID, final, startedAt, finishedAt)
}

func saveMatchToMongoDB(roomID string, final models.GameState, finishedAt time.Time) string {
	if repository.MongoDBClient == nil {
		return ""
	}

	players := make([]models.PlayerState, 0, len(final.Players))
	for _, id := range sortedIDs(final) {
		players = append(players, *final.Players[id])
	}

	collection := repository.MongoDBClient.Database(repository.MongoDatabase).Collection("match_results")
	result, err := collection.InsertOne(context.Background(), models.MatchResult{
		RoomID:     roomID,
		Players:    players,
		FinishedAt: finishedAt,
	})
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to insert match result into MongoDB")
		return ""
	}

	matchID := result.InsertedID.(primitive.ObjectID).Hex()
	log.Info().Str("room", roomID).Str("match", matchID).Msg("match result saved to MongoDB")
	return matchID
}

func saveMatchToPostgres(matchID, roomID string, final models.GameState, startedAt, finishedAt time.Time) {
	db := repository.PostgreSQLDB
	if db == nil {
		return
	}

	_, err := db.Exec("INSERT INTO matches (id, room_id, created_at, finished_at, participant_ids) VALUES ($1, $2, $3, $4, $5)",
		matchID, roomID, startedAt.UTC(), finishedAt.UTC(), pq.Array(sortedIDs(final)))
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to insert match into PostgreSQL")
		return
	}

	log.Info().Str("room", roomID).Str("match", matchID).Msg("match saved to PostgreSQL")
}

func sortedIDs(state models.GameState) []string {
	ids := make([]string, 0, len(state.Players))
	for id := range state.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
