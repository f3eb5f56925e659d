package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
	"github.com/mapleleafu/blastarena/blastarena-backend/store"
)

type stateWatcher struct {
	mu     sync.Mutex
	latest models.GameState
}

func (w *stateWatcher) observe(s models.GameState) {
	w.mu.Lock()
	w.latest = s
	w.mu.Unlock()
}

func (w *stateWatcher) snapshot() models.GameState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

func watchRoom(t *testing.T, st store.Store, roomID string) *stateWatcher {
	t.Helper()
	w := &stateWatcher{}
	unsub, err := st.Subscribe(context.Background(), roomID, w.observe)
	require.NoError(t, err)
	t.Cleanup(unsub)
	return w
}

// startLoop wires a loop to the store the way Run does, but leaves ticking
// to the test.
func startLoop(t *testing.T, st store.Store, roomID, playerID string, sampler *Sampler) *Loop {
	t.Helper()
	l := NewLoop(st, roomID, playerID, sampler)
	unsub, err := st.Subscribe(context.Background(), roomID, l.observe)
	require.NoError(t, err)
	t.Cleanup(unsub)
	return l
}

func TestLoopJoinCreatesPlayerAndSeedsBots(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	w := watchRoom(t, st, "room1")

	l := startLoop(t, st, "room1", "p_aaa", NewSampler())
	l.tick(ctx)

	snap := w.snapshot()
	require.Contains(t, snap.Players, "p_aaa")
	player := snap.Players["p_aaa"]
	assert.Equal(t, MaxHealth, player.Health)
	assert.False(t, player.Bot)
	assert.GreaterOrEqual(t, player.X, 0.0)
	assert.LessOrEqual(t, player.X, ArenaWidth-PlayerSize)

	for i := 1; i <= BotCount; i++ {
		id := fmt.Sprintf("bot_%d", i)
		require.Contains(t, snap.Players, id)
		assert.True(t, snap.Players[id].Bot)
		assert.Equal(t, MaxHealth, snap.Players[id].Health)
	}
}

func TestLoopSecondJoinerKeepsExistingBots(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	w := watchRoom(t, st, "room1")

	first := startLoop(t, st, "room1", "p_aaa", NewSampler())
	first.tick(ctx)

	second := startLoop(t, st, "room1", "p_bbb", NewSampler())
	second.tick(ctx)

	snap := w.snapshot()
	assert.Contains(t, snap.Players, "p_aaa")
	assert.Contains(t, snap.Players, "p_bbb")

	bots := 0
	for _, p := range snap.Players {
		if p.Bot {
			bots++
		}
	}
	assert.Equal(t, BotCount, bots)
}

func TestLoopMovementReachesStore(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	w := watchRoom(t, st, "room1")

	sampler := NewSampler()
	l := startLoop(t, st, "room1", "p_aaa", sampler)
	l.tick(ctx) // join
	startX := w.snapshot().Players["p_aaa"].X

	sampler.SetHeld(KeyRight, true)
	l.tick(ctx)

	want := startX + PlayerSpeed
	if want > ArenaWidth-PlayerSize {
		want = ArenaWidth - PlayerSize
	}
	require.Eventually(t, func() bool {
		p, ok := w.snapshot().Players["p_aaa"]
		return ok && p.X == want
	}, time.Second, 5*time.Millisecond)
}

func TestLoopAuthorityCullsBulletWithinOneStep(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, "room1", map[string]any{
		"players.p_aaa": models.PlayerState{ID: "p_aaa", X: 100, Y: 100, Health: MaxHealth},
		"bullets":       []models.BulletState{{ID: "b_1", X: 795, Y: 300, DX: 10, PlayerID: "p_aaa"}},
	}))
	w := watchRoom(t, st, "room1")

	l := startLoop(t, st, "room1", "p_aaa", NewSampler())
	l.tick(ctx)

	require.Eventually(t, func() bool {
		return len(w.snapshot().Bullets) == 0
	}, time.Second, 5*time.Millisecond)

	// The bullet never reappears on subsequent steps.
	l.tick(ctx)
	assert.Never(t, func() bool {
		return len(w.snapshot().Bullets) != 0
	}, 50*time.Millisecond, 5*time.Millisecond)
}
