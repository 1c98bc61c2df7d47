package engine

import "fmt"

// The resolver runs one turn's chain of movement and effects as a work
// list. Processing stops when a card has to be shown, the turn ends or the
// game is won.

type stepKind int

const (
	stepMove   stepKind = iota // move the active player by spaces, then land
	stepApply                  // apply an acknowledged card's effect
	stepFinish                 // show the next queued card or end the turn
)

type step struct {
	kind   stepKind
	spaces int
	card   Card
}

func (g *Game) resolve(work ...step) []Event {
	var events []Event
	for len(work) > 0 {
		s := work[0]
		work = work[1:]

		switch s.kind {
		case stepMove:
			evs, next := g.moveAndLand(s.spaces)
			events = append(events, evs...)
			work = append(work, next...)
		case stepApply:
			evs, next := g.applyEffect(s.card)
			events = append(events, evs...)
			work = append(work, next...)
		case stepFinish:
			if len(g.Queue) > 0 {
				card := g.Queue[0]
				g.Queue = g.Queue[1:]
				events = append(events, g.show(card))
			} else {
				events = append(events, g.endTurn()...)
			}
		}
	}
	return events
}

// moveAndLand moves the active player and dispatches on the landed tile.
func (g *Game) moveAndLand(spaces int) ([]Event, []step) {
	p := g.Active()
	from := p.Position
	to := g.MovePlayer(g.Current, spaces)
	events := []Event{{
		Type:   EventMoved,
		Player: p.Name,
		Data:   map[string]any{"from": from, "to": to, "tile": g.Board[to].Type},
	}}

	tile := g.Board[to]
	switch tile.Type {
	case TileLearn, TileEvent:
		drawn := g.Deck.Draw(1)
		if len(drawn) == 0 {
			return events, []step{{kind: stepFinish}}
		}
		return append(events, g.show(drawn[0])), nil

	case TileChallenge:
		return append(events, g.show(challengeCard(tile, p))), nil

	case TileRest:
		return append(events, g.show(restCard(tile))), nil

	case TileFinish:
		if p.Points >= g.Config.WinPoints {
			g.Winner = p.Name
			g.Phase = PhaseGameOver
			card := winCard(p)
			g.CurrentCard = &card
			return append(events,
				Event{Type: EventCardShown, Player: p.Name, Data: card},
				Event{Type: EventGameOver, Player: p.Name, Data: map[string]any{"points": p.Points}},
			), nil
		}
		return append(events, g.show(notYetCard(p, g.Config.WinPoints))), nil

	default:
		return events, []step{{kind: stepFinish}}
	}
}

// applyEffect applies an acknowledged card, discards it and returns the
// follow-up work. A drawing card stays in play until its own draw is done,
// so it can never draw itself.
func (g *Game) applyEffect(card Card) ([]Event, []step) {
	p := g.Active()
	e := card.Effect
	finish := []step{{kind: stepFinish}}

	if e.Type != EffectDraw {
		g.Deck.Discard(card)
	}

	switch e.Type {
	case EffectPoints:
		g.AddPoints(g.Current, e.Amount)
		return nil, finish

	case EffectSkill:
		g.BumpSkill(g.Current, e.Skill, e.Amount)
		return nil, finish

	case EffectSkip:
		g.SetSkipTurns(g.Current, p.SkipTurns+e.Turns)
		return nil, finish

	case EffectDraw:
		drawn := g.Deck.Draw(e.Amount)
		g.Deck.Discard(card)
		g.Queue = append(g.Queue, drawn...)
		ev := Event{
			Type:   EventCardsQueued,
			Player: p.Name,
			Data:   map[string]any{"requested": e.Amount, "drawn": len(drawn)},
		}
		return []Event{ev}, finish

	case EffectMove:
		return nil, []step{{kind: stepMove, spaces: e.Spaces}}

	case EffectWin:
		g.Phase = PhaseGameOver
		return nil, nil

	default: // EffectContinue and anything unknown
		return nil, finish
	}
}

func (g *Game) show(card Card) Event {
	g.CurrentCard = &card
	g.Phase = PhaseCardShown
	return Event{Type: EventCardShown, Player: g.Active().Name, Data: card}
}

func challengeCard(tile Tile, p *Player) Card {
	req := tile.Requirement
	c := Card{
		ID:       fmt.Sprintf("challenge-%d", tile.Index),
		Title:    tile.Label,
		Category: "Challenge",
		OneShot:  true,
	}
	if req.Met(p.Level(req.Skill)) {
		c.Body = fmt.Sprintf("Success! You meet the threshold (%d). +2 points.", req.Threshold)
		c.Effect = Points(2)
	} else {
		c.Body = fmt.Sprintf("Missed it. Need %d in %s. -1 point.", req.Threshold, req.Skill.Label())
		c.Effect = Points(-1)
	}
	return c
}

func restCard(tile Tile) Card {
	return Card{
		ID:       fmt.Sprintf("rest-%d", tile.Index),
		Title:    "Reflection",
		Category: "Well-being",
		Body:     "Take a breath. +1 Self Awareness.",
		Effect:   SkillUp(SkillSelfAwareness, 1),
		OneShot:  true,
	}
}

func winCard(p *Player) Card {
	return Card{
		ID:       "win",
		Title:    "Victory!",
		Category: "Game Over",
		Body:     fmt.Sprintf("%s wins with %d points! Congratulations!", p.Name, p.Points),
		Effect:   Effect{Type: EffectWin},
		OneShot:  true,
	}
}

func notYetCard(p *Player, need int) Card {
	return Card{
		ID:       "finish-no-win",
		Title:    "Not Quite...",
		Category: "Milestone",
		Body: fmt.Sprintf("%s reached the finish with only %d points. You need %d+ points to win. Keep playing!",
			p.Name, p.Points, need),
		Effect:  Effect{Type: EffectContinue},
		OneShot: true,
	}
}
