package engine

// Player holds one player's state for the life of a session.
type Player struct {
	Name      string        `json:"name"`
	Color     string        `json:"color"`
	Position  int           `json:"position"`
	Points    int           `json:"points"`
	SkipTurns int           `json:"skip_turns"`
	Skills    map[Skill]int `json:"skills"`
	IsAI      bool          `json:"is_ai"`
}

func NewPlayer(name, color string, isAI bool) *Player {
	p := &Player{
		Name:   name,
		Color:  color,
		Skills: make(map[Skill]int),
		IsAI:   isAI,
	}
	for _, s := range StartingSkills() {
		p.Skills[s] = 0
	}
	return p
}

// Level returns the player's level in s; untracked skills are 0.
func (p *Player) Level(s Skill) int {
	return p.Skills[s]
}

// MovePlayer advances player idx by delta, clamped to the board, and
// returns the new position.
func (g *Game) MovePlayer(idx, delta int) int {
	p := g.Players[idx]
	p.Position = g.Board.Clamp(p.Position + delta)
	return p.Position
}

// AddPoints adjusts the score; amount may be negative.
func (g *Game) AddPoints(idx, amount int) {
	g.Players[idx].Points += amount
}

// BumpSkill raises a skill, starting untracked skills at 0.
func (g *Game) BumpSkill(idx int, s Skill, amount int) {
	p := g.Players[idx]
	if p.Skills == nil {
		p.Skills = make(map[Skill]int)
	}
	p.Skills[s] += amount
	if p.Skills[s] < 0 {
		p.Skills[s] = 0
	}
}

// SetSkipTurns overwrites the skip counter.
func (g *Game) SetSkipTurns(idx, n int) {
	if n < 0 {
		n = 0
	}
	g.Players[idx].SkipTurns = n
}
