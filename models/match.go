package models

import "time"

// Match is the relational summary row written when a room is abandoned.
type Match struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"room_id"`
	CreatedAt      time.Time `json:"created_at"`
	FinishedAt     time.Time `json:"finished_at"`
	ParticipantIDs []string  `json:"participant_ids"`
}

// MatchResult is the full final snapshot archived to MongoDB.
type MatchResult struct {
	RoomID     string        `bson:"roomId" json:"roomId"`
	Players    []PlayerState `bson:"players" json:"players"`
	FinishedAt time.Time     `bson:"finishedAt" json:"finishedAt"`
}
