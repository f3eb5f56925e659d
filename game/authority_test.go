package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
)

func newTestAuthority(playerID string) *Authority {
	return NewAuthority(playerID, rand.New(rand.NewSource(1)))
}

// idleBot returns a bot that neither moves (already at its wander target,
// which pins retargeting as the only steering effect) nor fires this tick.
func idleBot(id string, x, y float64, health int, now time.Time) *models.PlayerState {
	return &models.PlayerState{
		ID: id, Bot: true, X: x, Y: y, Health: health,
		TargetX: x, TargetY: y,
		LastShot: now.UnixMilli(),
	}
}

func TestAuthorityNoopWhenNotElected(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	snap := snapshotWith(
		&models.PlayerState{ID: "p_aaa", Health: MaxHealth},
		&models.PlayerState{ID: "p_bbb", Health: MaxHealth},
	)
	snap.Bullets = []models.BulletState{{ID: "b_1", X: 100, Y: 100, DX: 10, PlayerID: "p_aaa"}}

	a := newTestAuthority("p_bbb")
	assert.Nil(t, a.Step(snap, now))
}

func TestAuthorityAdvancesBulletsByVelocity(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	snap := snapshotWith(&models.PlayerState{ID: "p_aaa", Health: MaxHealth})
	snap.Bullets = []models.BulletState{{ID: "b_1", X: 100, Y: 100, DX: 10, DY: -10, PlayerID: "p_aaa"}}

	fields := newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)

	bullets := fields["bullets"].([]models.BulletState)
	require.Len(t, bullets, 1)
	assert.Equal(t, 110.0, bullets[0].X)
	assert.Equal(t, 90.0, bullets[0].Y)
}

func TestAuthorityCullsOutOfBoundsBullets(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	snap := snapshotWith(&models.PlayerState{ID: "p_aaa", Health: MaxHealth})
	snap.Bullets = []models.BulletState{
		{ID: "b_right", X: 795, Y: 100, DX: 10, PlayerID: "p_aaa"},
		{ID: "b_top", X: 100, Y: 5, DY: -10, PlayerID: "p_aaa"},
		{ID: "b_live", X: 400, Y: 300, DX: 10, PlayerID: "p_aaa"},
	}

	fields := newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)

	bullets := fields["bullets"].([]models.BulletState)
	require.Len(t, bullets, 1)
	assert.Equal(t, "b_live", bullets[0].ID)
}

func TestAuthorityHitDamagesVictimOnly(t *testing.T) {
	// A's bullet reaches B's center: B drops to 75, nobody dies, the
	// bullet is consumed in the same step.
	now := time.UnixMilli(5_000_000)
	snap := snapshotWith(
		&models.PlayerState{ID: "p_aaa", X: 0, Y: 0, Health: MaxHealth},
		idleBot("b_bbb", 200, 200, MaxHealth, now),
	)
	snap.Bullets = []models.BulletState{{ID: "b_1", X: 210, Y: 220, DX: 10, PlayerID: "p_aaa"}}

	fields := newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)

	assert.Equal(t, 75, fields["players.b_bbb.health"])
	assert.NotContains(t, fields, "players.b_bbb.isDead")
	assert.NotContains(t, fields, "players.b_bbb.deaths")
	assert.NotContains(t, fields, "players.p_aaa.kills")
	assert.Empty(t, fields["bullets"].([]models.BulletState))
}

func TestAuthorityKillAndRespawn(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	snap := snapshotWith(
		&models.PlayerState{ID: "p_aaa", X: 0, Y: 0, Health: MaxHealth},
		idleBot("b_bbb", 200, 200, BulletDamage, now),
	)
	snap.Bullets = []models.BulletState{{ID: "b_1", X: 210, Y: 220, DX: 10, PlayerID: "p_aaa"}}

	a := newTestAuthority("p_aaa")
	fields := a.Step(snap, now)
	require.NotNil(t, fields)

	assert.Equal(t, 0, fields["players.b_bbb.health"])
	assert.Equal(t, true, fields["players.b_bbb.isDead"])
	assert.Equal(t, 1, fields["players.b_bbb.deaths"])
	assert.Equal(t, 1, fields["players.p_aaa.kills"])

	// Nothing due before the respawn delay elapses.
	assert.Empty(t, a.DueRespawns(now.Add(RespawnDelay-time.Millisecond)))

	writes := a.DueRespawns(now.Add(RespawnDelay))
	require.Len(t, writes, 1)
	respawn := writes[0]
	assert.Equal(t, MaxHealth, respawn["players.b_bbb.health"])
	assert.Equal(t, false, respawn["players.b_bbb.isDead"])
	x := respawn["players.b_bbb.x"].(float64)
	y := respawn["players.b_bbb.y"].(float64)
	assert.GreaterOrEqual(t, x, 0.0)
	assert.LessOrEqual(t, x, ArenaWidth-PlayerSize)
	assert.GreaterOrEqual(t, y, 0.0)
	assert.LessOrEqual(t, y, ArenaHeight-PlayerSize)

	// Drained once; nothing left behind.
	assert.Empty(t, a.DueRespawns(now.Add(2*RespawnDelay)))
}

func TestAuthorityHealthNeverNegative(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	snap := snapshotWith(
		&models.PlayerState{ID: "p_aaa", X: 0, Y: 0, Health: MaxHealth},
		idleBot("b_bbb", 200, 200, 10, now),
	)
	snap.Bullets = []models.BulletState{{ID: "b_1", X: 210, Y: 220, DX: 10, PlayerID: "p_aaa"}}

	fields := newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)
	assert.Equal(t, 0, fields["players.b_bbb.health"])
	assert.Equal(t, true, fields["players.b_bbb.isDead"])
}

func TestAuthorityBulletHitsOnlyFirstVictim(t *testing.T) {
	// Two participants overlapping: the bullet is consumed by the first
	// (in id order) and contributes no further damage.
	now := time.UnixMilli(5_000_000)
	snap := snapshotWith(
		&models.PlayerState{ID: "p_aaa", X: 0, Y: 0, Health: MaxHealth},
		&models.PlayerState{ID: "p_bbb", X: 200, Y: 200, Health: MaxHealth},
		&models.PlayerState{ID: "p_ccc", X: 200, Y: 200, Health: MaxHealth},
	)
	snap.Bullets = []models.BulletState{{ID: "b_1", X: 210, Y: 220, DX: 10, PlayerID: "p_aaa"}}

	fields := newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)

	assert.Equal(t, 75, fields["players.p_bbb.health"])
	assert.NotContains(t, fields, "players.p_ccc.health")
	assert.Empty(t, fields["bullets"].([]models.BulletState))
}

func TestAuthorityBulletSkipsShooterAndEliminated(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	snap := snapshotWith(
		&models.PlayerState{ID: "p_aaa", X: 200, Y: 200, Health: MaxHealth},
		&models.PlayerState{ID: "p_bbb", X: 200, Y: 200, Health: MaxHealth, Dead: true},
	)
	// Bullet owned by the overlapping shooter, on top of a corpse.
	snap.Bullets = []models.BulletState{{ID: "b_1", X: 215, Y: 220, DX: 5, PlayerID: "p_aaa"}}

	fields := newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)

	assert.NotContains(t, fields, "players.p_aaa.health")
	assert.NotContains(t, fields, "players.p_bbb.health")
	bullets := fields["bullets"].([]models.BulletState)
	require.Len(t, bullets, 1, "bullet passes through shooter and eliminated participants")
}

func TestAuthorityBotSteersTowardTargetAtHalfSpeed(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	bot := idleBot("bot_1", 100, 100, MaxHealth, now)
	bot.TargetX, bot.TargetY = 200, 100
	snap := snapshotWith(&models.PlayerState{ID: "p_aaa", X: 700, Y: 500, Health: MaxHealth}, bot)

	fields := newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)

	assert.Equal(t, 100+BotSpeed, fields["players.bot_1.x"])
	assert.NotContains(t, fields, "players.bot_1.y")
}

func TestAuthorityBotRetargetsWhenArrived(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	bot := idleBot("bot_1", 100, 100, MaxHealth, now)
	bot.TargetX, bot.TargetY = 105, 100 // inside the arrival threshold
	snap := snapshotWith(&models.PlayerState{ID: "p_aaa", X: 700, Y: 500, Health: MaxHealth}, bot)

	fields := newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)

	tx := fields["players.bot_1.targetX"].(float64)
	ty := fields["players.bot_1.targetY"].(float64)
	assert.GreaterOrEqual(t, tx, 0.0)
	assert.LessOrEqual(t, tx, ArenaWidth-PlayerSize)
	assert.GreaterOrEqual(t, ty, 0.0)
	assert.LessOrEqual(t, ty, ArenaHeight-PlayerSize)
}

func TestAuthorityBotFiresAtHumanUnderCooldown(t *testing.T) {
	now := time.UnixMilli(5_000_000)

	cooling := idleBot("bot_1", 200, 200, MaxHealth, now)
	cooling.LastShot = now.UnixMilli() - 500 // still cooling down
	snap := snapshotWith(&models.PlayerState{ID: "p_aaa", X: 0, Y: 0, Health: MaxHealth}, cooling)
	fields := newTestAuthority("p_aaa").Step(snap, now)
	if fields != nil {
		assert.NotContains(t, fields, "bullets")
	}

	ready := idleBot("bot_1", 200, 200, MaxHealth, now)
	ready.LastShot = now.UnixMilli() - 1500
	snap = snapshotWith(&models.PlayerState{ID: "p_aaa", X: 0, Y: 0, Health: MaxHealth}, ready)
	fields = newTestAuthority("p_aaa").Step(snap, now)
	require.NotNil(t, fields)

	assert.Equal(t, now.UnixMilli(), fields["players.bot_1.lastShot"])
	bullets := fields["bullets"].([]models.BulletState)
	require.Len(t, bullets, 1)
	assert.Equal(t, "bot_1", bullets[0].PlayerID)
	// Aimed from the bot's center toward the human's center.
	assert.Negative(t, bullets[0].DX)
	assert.Negative(t, bullets[0].DY)
}

func TestAuthorityEliminatedBotIdles(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	bot := idleBot("bot_1", 200, 200, 0, now)
	bot.Dead = true
	bot.TargetX, bot.TargetY = 700, 500
	bot.LastShot = 0
	snap := snapshotWith(&models.PlayerState{ID: "p_aaa", X: 0, Y: 0, Health: MaxHealth}, bot)

	fields := newTestAuthority("p_aaa").Step(snap, now)
	if fields != nil {
		assert.NotContains(t, fields, "players.bot_1.x")
		assert.NotContains(t, fields, "bullets")
	}
}
