package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
)

// Memory is an in-process Store. Updates are applied under a per-room lock
// in arrival order, which yields the same per-field last-write-wins
// semantics a replicated backend settles on.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]*memoryRoom
}

type memoryRoom struct {
	mu      sync.Mutex
	state   models.GameState
	nextSub int
	subs    map[int]func(models.GameState)
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]*memoryRoom)}
}

func (m *Memory) room(roomID string) *memoryRoom {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		r = &memoryRoom{subs: make(map[int]func(models.GameState))}
		r.state.Normalize()
		m.rooms[roomID] = r
	}
	return r
}

func (m *Memory) Subscribe(ctx context.Context, roomID string, fn func(models.GameState)) (func(), error) {
	r := m.room(roomID)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	snap := r.state.Clone()
	r.mu.Unlock()

	fn(snap)

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}, nil
}

func (m *Memory) Update(ctx context.Context, roomID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	r := m.room(roomID)

	r.mu.Lock()
	for path, value := range fields {
		if err := applyField(&r.state, path, value); err != nil {
			r.mu.Unlock()
			return err
		}
	}
	snap := r.state.Clone()
	subs := make([]func(models.GameState), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

func applyField(state *models.GameState, path string, value any) error {
	parts := strings.Split(path, ".")
	switch {
	case len(parts) == 1 && parts[0] == "bullets":
		return applyBullets(state, value)
	case len(parts) == 2 && parts[0] == "players":
		return applyPlayer(state, parts[1], value)
	case len(parts) == 3 && parts[0] == "players":
		return applyPlayerField(state, parts[1], parts[2], value)
	}
	return fmt.Errorf("store: unknown field path %q", path)
}

func applyBullets(state *models.GameState, value any) error {
	switch v := value.(type) {
	case ArrayUnion:
		for _, item := range v.Values {
			b, ok := item.(models.BulletState)
			if !ok {
				return fmt.Errorf("store: bullets append expects BulletState, got %T", item)
			}
			state.Bullets = append(state.Bullets, b)
		}
	case []models.BulletState:
		state.Bullets = append([]models.BulletState{}, v...)
	default:
		return fmt.Errorf("store: bullets expects []BulletState or ArrayUnion, got %T", value)
	}
	return nil
}

func applyPlayer(state *models.GameState, id string, value any) error {
	var p models.PlayerState
	switch v := value.(type) {
	case models.PlayerState:
		p = v
	case *models.PlayerState:
		p = *v
	default:
		return fmt.Errorf("store: players.%s expects PlayerState, got %T", id, value)
	}
	state.Players[id] = &p
	return nil
}

func applyPlayerField(state *models.GameState, id, field string, value any) error {
	p, ok := state.Players[id]
	if !ok {
		p = &models.PlayerState{ID: id}
		state.Players[id] = p
	}
	switch field {
	case "x":
		return setFloat(&p.X, field, value)
	case "y":
		return setFloat(&p.Y, field, value)
	case "targetX":
		return setFloat(&p.TargetX, field, value)
	case "targetY":
		return setFloat(&p.TargetY, field, value)
	case "health":
		return setInt(&p.Health, field, value)
	case "kills":
		return setInt(&p.Kills, field, value)
	case "deaths":
		return setInt(&p.Deaths, field, value)
	case "lastShot":
		return setInt64(&p.LastShot, field, value)
	case "isDead":
		return setBool(&p.Dead, field, value)
	case "isBot":
		return setBool(&p.Bot, field, value)
	}
	return fmt.Errorf("store: unknown player field %q", field)
}

func setFloat(dst *float64, field string, value any) error {
	switch v := value.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	case int64:
		*dst = float64(v)
	default:
		return fmt.Errorf("store: field %q expects number, got %T", field, value)
	}
	return nil
}

func setInt(dst *int, field string, value any) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		*dst = int(v)
	default:
		return fmt.Errorf("store: field %q expects number, got %T", field, value)
	}
	return nil
}

func setInt64(dst *int64, field string, value any) error {
	switch v := value.(type) {
	case int64:
		*dst = v
	case int:
		*dst = int64(v)
	case float64:
		*dst = int64(v)
	default:
		return fmt.Errorf("store: field %q expects number, got %T", field, value)
	}
	return nil
}

func setBool(dst *bool, field string, value any) error {
	v, ok := value.(bool)
	if !ok {
		return fmt.Errorf("store: field %q expects bool, got %T", field, value)
	}
	*dst = v
	return nil
}
