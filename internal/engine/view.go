package engine

// View is the snapshot sent to clients after every change.
type View struct {
	Board       Board     `json:"board"`
	Players     []Player  `json:"players"`
	Current     int       `json:"current"`
	Turn        int       `json:"turn"`
	Phase       GamePhase `json:"phase"`
	Rolled      int       `json:"rolled,omitempty"`
	CurrentCard *Card     `json:"current_card,omitempty"`
	Queued      int       `json:"queued"`
	DrawPile    int       `json:"draw_pile"`
	DiscardPile int       `json:"discard_pile"`
	Winner      string    `json:"winner,omitempty"`
	WinPoints   int       `json:"win_points"`
	// SkillLabels names every skill for display.
	SkillLabels map[Skill]string `json:"skill_labels"`
}

// View copies the state so callers can read it without holding the game.
func (g *Game) View() View {
	players := make([]Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Skills = make(map[Skill]int, len(p.Skills))
		for s, lvl := range p.Skills {
			cp.Skills[s] = lvl
		}
		players[i] = cp
	}
	v := View{
		Board:       g.Board,
		Players:     players,
		Current:     g.Current,
		Turn:        g.Turn,
		Phase:       g.Phase,
		Rolled:      g.Rolled,
		Queued:      len(g.Queue),
		DrawPile:    g.Deck.Len(),
		DiscardPile: g.Deck.DiscardLen(),
		Winner:      g.Winner,
		WinPoints:   g.Config.WinPoints,
		SkillLabels: skillLabelTable(),
	}
	if g.CurrentCard != nil {
		c := *g.CurrentCard
		v.CurrentCard = &c
	}
	return v
}

// InPlay returns the catalog cards currently outside both piles.
func (g *Game) InPlay() []Card {
	var out []Card
	if g.CurrentCard != nil && !g.CurrentCard.OneShot {
		out = append(out, *g.CurrentCard)
	}
	return append(out, g.Queue...)
}

func skillLabelTable() map[Skill]string {
	labels := make(map[Skill]string, len(skillLabels))
	for _, s := range AllSkills() {
		labels[s] = s.Label()
	}
	return labels
}
