package game

import "sync"

// Input key identifiers as sent by clients.
const (
	KeyUp    = "up"
	KeyDown  = "down"
	KeyLeft  = "left"
	KeyRight = "right"
	KeyFire  = "fire"
)

// Sampler holds the latest observed input edge state for one session. The
// websocket read pump writes it asynchronously; the simulation loop samples
// it once per tick.
type Sampler struct {
	mu      sync.Mutex
	held    map[string]bool
	cursorX float64
	cursorY float64
}

func NewSampler() *Sampler {
	return &Sampler{held: make(map[string]bool)}
}

func (s *Sampler) SetHeld(key string, held bool) {
	s.mu.Lock()
	s.held[key] = held
	s.mu.Unlock()
}

// SetAll replaces the whole held-key map, as clients report full key state
// per input message.
func (s *Sampler) SetAll(keys map[string]bool) {
	s.mu.Lock()
	s.held = make(map[string]bool, len(keys))
	for k, v := range keys {
		s.held[k] = v
	}
	s.mu.Unlock()
}

func (s *Sampler) SetCursor(x, y float64) {
	s.mu.Lock()
	s.cursorX = x
	s.cursorY = y
	s.mu.Unlock()
}

// Sample returns a copy of the current input state.
func (s *Sampler) Sample() InputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	held := make(map[string]bool, len(s.held))
	for k, v := range s.held {
		held[k] = v
	}
	return InputState{held: held, CursorX: s.cursorX, CursorY: s.cursorY}
}

// InputState is one tick's immutable view of the sampler.
type InputState struct {
	held    map[string]bool
	CursorX float64
	CursorY float64
}

// Held reports whether a key is currently down; absent keys are not held.
func (in InputState) Held(key string) bool {
	return in.held[key]
}
