package models

// InputMessage is the client's intent: which keys are currently held and
// where the cursor is, relative to the game viewport.
type InputMessage struct {
	Type   string          `json:"type"`
	Keys   map[string]bool `json:"keys"`
	Cursor CursorPosition  `json:"cursor"`
}

type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StateMessage carries a full world snapshot out to every client in a room.
type StateMessage struct {
	Type string    `json:"type"`
	Data GameState `json:"data"`
}
