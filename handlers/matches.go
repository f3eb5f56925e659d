package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
	"github.com/mapleleafu/blastarena/blastarena-backend/repository"
	"github.com/mapleleafu/blastarena/blastarena-backend/responses"
	"github.com/mapleleafu/blastarena/blastarena-backend/utils"
)

func FetchRoomMatches(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomID"]
	if !idPattern.MatchString(roomID) {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid room id."})
		return
	}

	db := repository.PostgreSQLDB
	query := "SELECT id, room_id, created_at, finished_at, participant_ids FROM matches WHERE room_id = $1 ORDER BY finished_at DESC"
	rows, err := db.Query(query, roomID)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to fetch matches")
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch room matches."})
		return
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var match models.Match
		err := rows.Scan(&match.ID, &match.RoomID, &match.CreatedAt, &match.FinishedAt, pq.Array(&match.ParticipantIDs))
		if err != nil {
			utils.HandleError(w, responses.InternalServerError{Msg: "Error processing room matches."})
			return
		}
		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("error iterating match rows")
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing room matches."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(matches))
}

func FetchMatchResult(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	matchIDStr := vars["matchID"]

	matchID, err := primitive.ObjectIDFromHex(matchIDStr)
	if err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid match id format."})
		return
	}

	collection := repository.MongoDBClient.Database(repository.MongoDatabase).Collection("match_results")
	var result models.MatchResult
	err = collection.FindOne(context.Background(), bson.M{"_id": matchID}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(w, responses.NotFoundError{Msg: "Match result not found."})
			return
		}
		log.Error().Err(err).Str("match", matchIDStr).Msg("failed to fetch match result")
		utils.HandleError(w, responses.InternalServerError{Msg: "Error fetching match result."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(result))
}
