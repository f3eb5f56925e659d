package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mapleleafu/blastarena/blastarena-backend/game"
	"github.com/mapleleafu/blastarena/blastarena-backend/models"
	"github.com/mapleleafu/blastarena/blastarena-backend/responses"
	"github.com/mapleleafu/blastarena/blastarena-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Participant ids are generated client-side and persisted there so a
// rejoining client resumes as the same participant. Shape-check only; this
// is an identity, not an authentication.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// Connection represents a WebSocket connection and the participant it
// belongs to.
type Connection struct {
	ws       *websocket.Conn
	send     chan []byte
	roomID   string
	playerID string
	sampler  *game.Sampler
}

func WsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomID"]
	playerID := vars["playerID"]

	if !idPattern.MatchString(roomID) || !idPattern.MatchString(playerID) {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid room or player id."})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	connection := &Connection{
		ws:       conn,
		send:     make(chan []byte, 256),
		roomID:   roomID,
		playerID: playerID,
		sampler:  game.NewSampler(),
	}

	rh, err := joinRoom(connection)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to join room")
		return
	}

	// Each connected client runs its own simulation loop; authority is
	// re-elected among them every tick.
	ctx, cancel := context.WithCancel(context.Background())
	loop := game.NewLoop(Store, roomID, playerID, connection.sampler)
	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("room", roomID).Str("player", playerID).Msg("simulation loop exited")
		}
	}()

	log.Info().Str("room", roomID).Str("player", playerID).Msg("player connected")

	defer func() {
		cancel()
		select {
		case rh.unregister <- connection:
		case <-rh.quit:
		}
		log.Info().Str("room", roomID).Str("player", playerID).Msg("player disconnected")
	}()

	go connection.writePump()
	connection.readPump()
}

// joinRoom registers the connection with the room's hub, re-fetching the
// hub if it was torn down between lookup and registration.
func joinRoom(c *Connection) (*RoomHub, error) {
	for {
		rh, err := hub.room(c.roomID)
		if err != nil {
			return nil, err
		}
		select {
		case rh.register <- c:
			return rh, nil
		case <-rh.quit:
		}
	}
}

func (c *Connection) readPump() {
	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("player", c.playerID).Msg("websocket read ended")
			return
		}
		processMessage(c, message)
	}
}

func (c *Connection) writePump() {
	defer c.ws.Close()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Debug().Err(err).Str("player", c.playerID).Msg("websocket write failed")
			return
		}
	}
}

func processMessage(c *Connection, rawMessage []byte) {
	var msg models.InputMessage
	if err := json.Unmarshal(rawMessage, &msg); err != nil {
		log.Debug().Err(err).Str("player", c.playerID).Msg("unparseable client message")
		return
	}

	switch msg.Type {
	case "input":
		c.sampler.SetAll(msg.Keys)
		c.sampler.SetCursor(msg.Cursor.X, msg.Cursor.Y)
	default:
		log.Debug().Str("type", msg.Type).Str("player", c.playerID).Msg("unhandled message type")
	}
}
