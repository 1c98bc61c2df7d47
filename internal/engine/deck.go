package engine

import "math/rand/v2"

// RNG abstracts randomness so tests can fix dice and shuffles.
type RNG interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

type defaultRNG struct{}

func (defaultRNG) IntN(n int) int { return rand.IntN(n) }

// DefaultRNG is backed by math/rand/v2.
func DefaultRNG() RNG { return defaultRNG{} }

// Shuffle returns a Fisher-Yates permutation of a copy of cards.
func Shuffle(cards []Card, rng RNG) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deck is a draw pile plus a discard pile. Cards in play belong to neither.
type Deck struct {
	draw    []Card
	discard []Card
	rng     RNG
}

// NewDeck creates a deck with a shuffled draw pile.
func NewDeck(cards []Card, rng RNG) *Deck {
	return &Deck{draw: Shuffle(cards, rng), rng: rng}
}

// Draw removes up to n cards from the top. When the draw pile runs out the
// discard pile is shuffled in; if both are empty the draw comes back short.
func (d *Deck) Draw(n int) []Card {
	var drawn []Card
	for i := 0; i < n; i++ {
		if len(d.draw) == 0 {
			if len(d.discard) == 0 {
				break
			}
			d.draw = Shuffle(d.discard, d.rng)
			d.discard = nil
		}
		drawn = append(drawn, d.draw[0])
		d.draw = d.draw[1:]
	}
	return drawn
}

// Discard puts a resolved card on the discard pile. One-shot cards are dropped.
func (d *Deck) Discard(c Card) {
	if c.OneShot {
		return
	}
	d.discard = append(d.discard, c)
}

// Len returns the number of cards left to draw.
func (d *Deck) Len() int {
	return len(d.draw)
}

// DiscardLen returns the size of the discard pile.
func (d *Deck) DiscardLen() int {
	return len(d.discard)
}
