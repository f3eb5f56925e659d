package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
	"github.com/mapleleafu/blastarena/blastarena-backend/store"
)

// Store is the shared room document store, wired up in main before the
// router starts serving.
var Store store.Store

// RoomHub maintains the set of active connections for one room and fans the
// room's state snapshots out to them.
type RoomHub struct {
	roomID string

	// Registered connections.
	connections map[*Connection]bool

	broadcast  chan []byte
	register   chan *Connection
	unregister chan *Connection
	quit       chan struct{}

	unsub   func()
	onEmpty func(*RoomHub)

	mu        sync.Mutex
	latest    models.GameState
	startedAt time.Time
}

// Hub tracks one RoomHub per active room, created on first join and torn
// down (with match archival) when the last connection leaves.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*RoomHub
}

var hub = &Hub{rooms: make(map[string]*RoomHub)}

func (h *Hub) room(roomID string) (*RoomHub, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rh, ok := h.rooms[roomID]; ok {
		return rh, nil
	}

	rh := &RoomHub{
		roomID:      roomID,
		connections: make(map[*Connection]bool),
		broadcast:   make(chan []byte),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		quit:        make(chan struct{}),
		startedAt:   time.Now(),
		onEmpty:     h.remove,
	}
	go rh.run()

	unsub, err := Store.Subscribe(context.Background(), roomID, rh.observe)
	if err != nil {
		close(rh.quit)
		return nil, err
	}
	rh.unsub = unsub

	h.rooms[roomID] = rh
	return rh, nil
}

func (h *Hub) remove(rh *RoomHub) {
	h.mu.Lock()
	delete(h.rooms, rh.roomID)
	h.mu.Unlock()

	rh.unsub()
	close(rh.quit)

	rh.mu.Lock()
	final := rh.latest
	startedAt := rh.startedAt
	rh.mu.Unlock()
	archiveMatch(rh.roomID, final, startedAt)
}

// observe caches the latest snapshot for archival and rebroadcasts it to
// the room. A snapshot that cannot be handed off immediately is dropped;
// the next one follows within a frame.
func (rh *RoomHub) observe(s models.GameState) {
	rh.mu.Lock()
	rh.latest = s
	rh.mu.Unlock()

	msg, err := json.Marshal(models.StateMessage{Type: "state", Data: s})
	if err != nil {
		log.Error().Err(err).Str("room", rh.roomID).Msg("failed to marshal state broadcast")
		return
	}
	select {
	case rh.broadcast <- msg:
	case <-rh.quit:
	default:
	}
}

func (rh *RoomHub) run() {
	for {
		select {
		case <-rh.quit:
			return
		case connection := <-rh.register:
			rh.connections[connection] = true
		case connection := <-rh.unregister:
			if _, ok := rh.connections[connection]; ok {
				delete(rh.connections, connection)
				close(connection.send)
			}
			if len(rh.connections) == 0 {
				rh.onEmpty(rh)
				return
			}
		case message := <-rh.broadcast:
			for connection := range rh.connections {
				select {
				case connection.send <- message:
				default:
					close(connection.send)
					delete(rh.connections, connection)
				}
			}
		}
	}
}
