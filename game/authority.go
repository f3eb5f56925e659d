package game

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
	"github.com/mapleleafu/blastarena/blastarena-backend/utils"
)

// Authority advances all shared, contested state: bot steering and fire,
// projectile integration, bounds culling, hit detection, damage and score
// accounting, and respawn scheduling. Every session carries an Authority,
// but Step is a no-op unless the session's participant is currently elected.
type Authority struct {
	PlayerID string

	rng      *rand.Rand
	respawns []pendingRespawn
	pending  map[string]bool
}

type pendingRespawn struct {
	playerID string
	due      time.Time
}

func NewAuthority(playerID string, rng *rand.Rand) *Authority {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Authority{
		PlayerID: playerID,
		rng:      rng,
		pending:  make(map[string]bool),
	}
}

// Step runs one authoritative tick against the latest observed snapshot and
// returns the combined partial update, or nil when this session is not the
// elected authority or nothing changed. Respawns are only scheduled here;
// they are committed separately via DueRespawns.
func (a *Authority) Step(snap models.GameState, now time.Time) map[string]any {
	if ElectAuthority(snap.Players) != a.PlayerID {
		return nil
	}

	fields := make(map[string]any)
	players := snap.Clone().Players
	ids := sortedPlayerIDs(players)

	spawned := a.stepBots(players, ids, fields, now)

	bullets := make([]models.BulletState, 0, len(snap.Bullets)+len(spawned))
	bullets = append(bullets, snap.Bullets...)
	bullets = append(bullets, spawned...)

	surviving := make([]models.BulletState, 0, len(bullets))
	for _, b := range bullets {
		b.X += b.DX
		b.Y += b.DY
		if b.X < 0 || b.X > ArenaWidth || b.Y < 0 || b.Y > ArenaHeight {
			continue
		}
		if victim := firstVictim(b, players, ids); victim != "" {
			a.applyHit(players, b.PlayerID, victim, fields, now)
			continue
		}
		surviving = append(surviving, b)
	}
	if len(snap.Bullets) > 0 || len(spawned) > 0 {
		fields["bullets"] = surviving
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// stepBots steers each live bot toward its wander target at half speed,
// retargets bots that have arrived, and fires at the nearest live human
// under the bot cooldown. Returns newly spawned bullets.
func (a *Authority) stepBots(players map[string]*models.PlayerState, ids []string, fields map[string]any, now time.Time) []models.BulletState {
	nowMs := now.UnixMilli()
	var spawned []models.BulletState

	for _, id := range ids {
		p := players[id]
		if !p.Bot || p.Dead {
			continue
		}

		dx := p.TargetX - p.X
		dy := p.TargetY - p.Y
		dist := math.Hypot(dx, dy)
		if dist <= BotTargetSnapDist {
			p.TargetX = a.rng.Float64() * (ArenaWidth - PlayerSize)
			p.TargetY = a.rng.Float64() * (ArenaHeight - PlayerSize)
			fields["players."+id+".targetX"] = p.TargetX
			fields["players."+id+".targetY"] = p.TargetY
		} else {
			nx := clamp(p.X+dx/dist*BotSpeed, 0, ArenaWidth-PlayerSize)
			ny := clamp(p.Y+dy/dist*BotSpeed, 0, ArenaHeight-PlayerSize)
			if nx != p.X {
				p.X = nx
				fields["players."+id+".x"] = nx
			}
			if ny != p.Y {
				p.Y = ny
				fields["players."+id+".y"] = ny
			}
		}

		target := nearestHuman(players, ids, p)
		if target == nil {
			continue
		}
		if nowMs-p.LastShot >= BotFireCooldown.Milliseconds() {
			p.LastShot = nowMs
			fields["players."+id+".lastShot"] = nowMs
			cx := p.X + PlayerSize/2
			cy := p.Y + PlayerSize/2
			angle := math.Atan2(target.Y+PlayerSize/2-cy, target.X+PlayerSize/2-cx)
			spawned = append(spawned, models.BulletState{
				ID:       utils.ShortID("b"),
				X:        cx,
				Y:        cy,
				DX:       math.Cos(angle) * BulletSpeed,
				DY:       math.Sin(angle) * BulletSpeed,
				PlayerID: id,
			})
		}
	}
	return spawned
}

// firstVictim returns the first participant (in id order) the bullet hits
// this tick, excluding the shooter and the already eliminated.
func firstVictim(b models.BulletState, players map[string]*models.PlayerState, ids []string) string {
	for _, id := range ids {
		p := players[id]
		if id == b.PlayerID || p.Dead {
			continue
		}
		cx := p.X + PlayerSize/2
		cy := p.Y + PlayerSize/2
		if math.Hypot(b.X-cx, b.Y-cy) < HitRadius {
			return id
		}
	}
	return ""
}

func (a *Authority) applyHit(players map[string]*models.PlayerState, shooterID, victimID string, fields map[string]any, now time.Time) {
	v := players[victimID]
	v.Health -= BulletDamage
	if v.Health < 0 {
		v.Health = 0
	}
	fields["players."+victimID+".health"] = v.Health

	if v.Health == 0 && !v.Dead {
		v.Dead = true
		v.Deaths++
		fields["players."+victimID+".isDead"] = true
		fields["players."+victimID+".deaths"] = v.Deaths
		if shooter, ok := players[shooterID]; ok {
			shooter.Kills++
			fields["players."+shooterID+".kills"] = shooter.Kills
		}
		a.scheduleRespawn(victimID, now)
	}
}

func (a *Authority) scheduleRespawn(playerID string, now time.Time) {
	if a.pending[playerID] {
		return
	}
	a.pending[playerID] = true
	a.respawns = append(a.respawns, pendingRespawn{playerID: playerID, due: now.Add(RespawnDelay)})
}

// DueRespawns drains respawns whose delay has elapsed. Each is an
// independent write: new random in-bounds position, full health, eliminated
// flag cleared. The queue drains on every tick regardless of whether this
// session still holds authority, matching the deferred-timer semantics of
// the scheduling client.
func (a *Authority) DueRespawns(now time.Time) []map[string]any {
	var out []map[string]any
	remaining := a.respawns[:0]
	for _, r := range a.respawns {
		if r.due.After(now) {
			remaining = append(remaining, r)
			continue
		}
		delete(a.pending, r.playerID)
		out = append(out, map[string]any{
			"players." + r.playerID + ".x":      a.rng.Float64() * (ArenaWidth - PlayerSize),
			"players." + r.playerID + ".y":      a.rng.Float64() * (ArenaHeight - PlayerSize),
			"players." + r.playerID + ".health": MaxHealth,
			"players." + r.playerID + ".isDead": false,
		})
	}
	a.respawns = remaining
	return out
}

func nearestHuman(players map[string]*models.PlayerState, ids []string, from *models.PlayerState) *models.PlayerState {
	var nearest *models.PlayerState
	best := math.MaxFloat64
	for _, id := range ids {
		p := players[id]
		if p.Bot || p.Dead {
			continue
		}
		d := math.Hypot(p.X-from.X, p.Y-from.Y)
		if d < best {
			best = d
			nearest = p
		}
	}
	return nearest
}

func sortedPlayerIDs(players map[string]*models.PlayerState) []string {
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
