package models

// PlayerState is one participant in a room's match: a connected human or a
// server-driven bot. Position is the top-left corner of the participant's
// square; lastShot is unix milliseconds.
type PlayerState struct {
	ID       string  `json:"id" bson:"id"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Health   int     `json:"health" bson:"health"`
	Kills    int     `json:"kills" bson:"kills"`
	Deaths   int     `json:"deaths" bson:"deaths"`
	LastShot int64   `json:"lastShot" bson:"lastShot"`
	Dead     bool    `json:"isDead" bson:"isDead"`
	Bot      bool    `json:"isBot" bson:"isBot"`

	// Wander target, bots only.
	TargetX float64 `json:"targetX,omitempty" bson:"targetX,omitempty"`
	TargetY float64 `json:"targetY,omitempty" bson:"targetY,omitempty"`
}

type BulletState struct {
	ID       string  `json:"id" bson:"id"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	DX       float64 `json:"dx" bson:"dx"`
	DY       float64 `json:"dy" bson:"dy"`
	PlayerID string  `json:"playerId" bson:"playerId"`
}

// GameState is the full replicated document for one room's active match.
type GameState struct {
	Players map[string]*PlayerState `json:"players" bson:"players"`
	Bullets []BulletState           `json:"bullets" bson:"bullets"`
}

// Normalize fills absent collections so readers never see nil.
func (s *GameState) Normalize() {
	if s.Players == nil {
		s.Players = make(map[string]*PlayerState)
	}
	if s.Bullets == nil {
		s.Bullets = []BulletState{}
	}
}

// Clone returns a deep copy safe to hand across goroutines.
func (s GameState) Clone() GameState {
	out := GameState{
		Players: make(map[string]*PlayerState, len(s.Players)),
		Bullets: make([]BulletState, len(s.Bullets)),
	}
	for id, p := range s.Players {
		cp := *p
		out.Players[id] = &cp
	}
	copy(out.Bullets, s.Bullets)
	return out
}
