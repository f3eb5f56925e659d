package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
	"github.com/mapleleafu/blastarena/blastarena-backend/store"
)

// Loop is one session's fixed-rate simulation loop. Per tick it reads the
// latest cached snapshot, applies the local controller, applies the
// authority step when elected, and drains due respawns. All commits are
// fire-and-forget: the loop never waits on a write before the next tick,
// and a failed write's effects are simply recomputed from the next
// snapshot.
type Loop struct {
	RoomID   string
	PlayerID string

	store      store.Store
	sampler    *Sampler
	controller *Controller
	authority  *Authority
	rng        *rand.Rand
	now        func() time.Time
	interval   time.Duration

	mu       sync.Mutex
	latest   models.GameState
	haveSnap bool

	joined bool
}

func NewLoop(st store.Store, roomID, playerID string, sampler *Sampler) *Loop {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Loop{
		RoomID:     roomID,
		PlayerID:   playerID,
		store:      st,
		sampler:    sampler,
		controller: NewController(playerID),
		authority:  NewAuthority(playerID, rng),
		rng:        rng,
		now:        time.Now,
		interval:   time.Second / SimTickHz,
	}
}

// Run subscribes to the room document and ticks until ctx is cancelled.
// Pending respawn timers and in-flight writes are not chased on teardown.
func (l *Loop) Run(ctx context.Context) error {
	unsub, err := l.store.Subscribe(ctx, l.RoomID, l.observe)
	if err != nil {
		return fmt.Errorf("subscribe room %s: %w", l.RoomID, err)
	}
	defer unsub()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) observe(s models.GameState) {
	l.mu.Lock()
	l.latest = s
	l.haveSnap = true
	l.mu.Unlock()
}

func (l *Loop) snapshot() (models.GameState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest, l.haveSnap
}

func (l *Loop) tick(ctx context.Context) {
	snap, ok := l.snapshot()
	if !ok {
		return
	}
	now := l.now()

	if !l.joined {
		l.ensureJoined(ctx, snap)
	}

	if fields := l.controller.Step(snap, l.sampler.Sample(), now); len(fields) > 0 {
		l.commit(ctx, fields)
	}
	if fields := l.authority.Step(snap, now); len(fields) > 0 {
		l.commit(ctx, fields)
	}
	for _, fields := range l.authority.DueRespawns(now) {
		l.commit(ctx, fields)
	}
}

// ensureJoined writes the local participant record on first sight of a
// snapshot missing it, and seeds the bot population into a fresh room. Bot
// ids are deterministic so two sessions racing to seed converge on the same
// records under last-write-wins.
func (l *Loop) ensureJoined(ctx context.Context, snap models.GameState) {
	if _, ok := snap.Players[l.PlayerID]; ok {
		l.joined = true
		return
	}

	fields := map[string]any{
		"players." + l.PlayerID: models.PlayerState{
			ID:     l.PlayerID,
			X:      l.rng.Float64() * (ArenaWidth - PlayerSize),
			Y:      l.rng.Float64() * (ArenaHeight - PlayerSize),
			Health: MaxHealth,
		},
	}

	hasBots := false
	for _, p := range snap.Players {
		if p.Bot {
			hasBots = true
			break
		}
	}
	if !hasBots {
		for i := 1; i <= BotCount; i++ {
			id := fmt.Sprintf("bot_%d", i)
			fields["players."+id] = models.PlayerState{
				ID:      id,
				Bot:     true,
				X:       l.rng.Float64() * (ArenaWidth - PlayerSize),
				Y:       l.rng.Float64() * (ArenaHeight - PlayerSize),
				Health:  MaxHealth,
				TargetX: l.rng.Float64() * (ArenaWidth - PlayerSize),
				TargetY: l.rng.Float64() * (ArenaHeight - PlayerSize),
			}
		}
	}

	if err := l.store.Update(ctx, l.RoomID, fields); err != nil {
		log.Debug().Err(err).Str("room", l.RoomID).Str("player", l.PlayerID).Msg("join write failed, retrying next tick")
		return
	}
	l.joined = true
}

func (l *Loop) commit(ctx context.Context, fields map[string]any) {
	go func() {
		if err := l.store.Update(ctx, l.RoomID, fields); err != nil {
			log.Debug().Err(err).Str("room", l.RoomID).Str("player", l.PlayerID).Msg("dropping tick effects")
		}
	}()
}
