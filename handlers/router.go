package handlers

import (
	"github.com/gorilla/mux"
)

func NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws/{roomID}/{playerID}", WsHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms/{roomID}/matches", FetchRoomMatches).Methods("GET")
	api.HandleFunc("/matches/{matchID}", FetchMatchResult).Methods("GET")

	return r
}
