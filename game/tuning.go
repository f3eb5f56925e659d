package game

import "time"

const (
	ArenaWidth  = 800.0
	ArenaHeight = 600.0
	PlayerSize  = 40.0

	PlayerSpeed = 5.0  // units per tick
	BulletSpeed = 10.0 // units per tick

	MaxHealth    = 100
	BulletDamage = 25

	FireCooldown    = 200 * time.Millisecond
	BotFireCooldown = 1000 * time.Millisecond
	RespawnDelay    = 3000 * time.Millisecond

	BotCount          = 3
	BotSpeed          = PlayerSpeed / 2
	BotTargetSnapDist = 10.0 // wander target reached within this distance

	HitRadius = PlayerSize / 2

	SimTickHz = 60
)
