package game

import (
	"math"
	"time"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
	"github.com/mapleleafu/blastarena/blastarena-backend/store"
	"github.com/mapleleafu/blastarena/blastarena-backend/utils"
)

// Controller drives the local participant: movement clamped to the arena and
// cursor-aimed fire under cooldown. It only ever touches the local
// participant's own fields plus projectile appends.
type Controller struct {
	PlayerID string

	// lastShot is tracked locally and advanced the moment a shot is
	// emitted, before the remote write lands, so a slow round trip cannot
	// produce duplicate fire events.
	lastShot int64
}

func NewController(playerID string) *Controller {
	return &Controller{PlayerID: playerID}
}

// Step computes this tick's partial update for the local participant from
// the latest observed snapshot and sampled input. Returns nil when nothing
// changed. Eliminated participants neither move nor fire.
func (c *Controller) Step(snap models.GameState, in InputState, now time.Time) map[string]any {
	player, ok := snap.Players[c.PlayerID]
	if !ok || player.Dead {
		return nil
	}

	fields := make(map[string]any)

	// Axes clamp independently; holding two keys moves both at full speed.
	x, y := player.X, player.Y
	if in.Held(KeyUp) {
		y = math.Max(0, y-PlayerSpeed)
	}
	if in.Held(KeyDown) {
		y = math.Min(ArenaHeight-PlayerSize, y+PlayerSpeed)
	}
	if in.Held(KeyLeft) {
		x = math.Max(0, x-PlayerSpeed)
	}
	if in.Held(KeyRight) {
		x = math.Min(ArenaWidth-PlayerSize, x+PlayerSpeed)
	}
	if x != player.X {
		fields["players."+c.PlayerID+".x"] = x
	}
	if y != player.Y {
		fields["players."+c.PlayerID+".y"] = y
	}

	if in.Held(KeyFire) {
		nowMs := now.UnixMilli()
		last := c.lastShot
		if player.LastShot > last {
			last = player.LastShot
		}
		if nowMs-last >= FireCooldown.Milliseconds() {
			c.lastShot = nowMs
			cx := x + PlayerSize/2
			cy := y + PlayerSize/2
			angle := math.Atan2(in.CursorY-cy, in.CursorX-cx)
			bullet := models.BulletState{
				ID:       utils.ShortID("b"),
				X:        cx,
				Y:        cy,
				DX:       math.Cos(angle) * BulletSpeed,
				DY:       math.Sin(angle) * BulletSpeed,
				PlayerID: c.PlayerID,
			}
			fields["bullets"] = store.Append(bullet)
			fields["players."+c.PlayerID+".lastShot"] = nowMs
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
