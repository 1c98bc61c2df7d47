package engine

// EffectType identifies what a card does once acknowledged.
type EffectType string

const (
	EffectPoints   EffectType = "points"
	EffectSkill    EffectType = "skill"
	EffectDraw     EffectType = "draw"
	EffectMove     EffectType = "move"
	EffectSkip     EffectType = "skip"
	EffectWin      EffectType = "win"      // synthesized only
	EffectContinue EffectType = "continue" // synthesized only
)

// Effect is a tagged variant; only the fields relevant to Type are set.
type Effect struct {
	Type   EffectType `json:"type"`
	Amount int        `json:"amount,omitempty"` // points, skill, draw
	Skill  Skill      `json:"skill,omitempty"`
	Spaces int        `json:"spaces,omitempty"`
	Turns  int        `json:"turns,omitempty"`
}

func Points(amount int) Effect { return Effect{Type: EffectPoints, Amount: amount} }

func SkillUp(s Skill, amount int) Effect { return Effect{Type: EffectSkill, Skill: s, Amount: amount} }

func Draw(amount int) Effect { return Effect{Type: EffectDraw, Amount: amount} }

func Move(spaces int) Effect { return Effect{Type: EffectMove, Spaces: spaces} }

func Skip(turns int) Effect { return Effect{Type: EffectSkip, Turns: turns} }

// Card is an immutable card template.
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Body     string `json:"body"`
	Effect   Effect `json:"effect"`
	// OneShot cards are narrated tile outcomes; they never enter the deck.
	OneShot bool `json:"one_shot,omitempty"`
}

// Catalog returns the ten permanent cards.
func Catalog() []Card {
	return []Card{
		{ID: "c1", Title: "Active Listening", Category: "Emotional Intelligence",
			Body:   "Open yourself up to truly hear the other person. Make the speaker the center of your attention.",
			Effect: SkillUp(SkillActiveListening, 1)},
		{ID: "c2", Title: "Empathy", Category: "Emotional Intelligence",
			Body:   "Acknowledge feelings and perspectives. Build trust through understanding.",
			Effect: SkillUp(SkillEmpathy, 1)},
		{ID: "c3", Title: "Validation", Category: "Emotional Intelligence",
			Body:   "Name the emotion, validate the experience, and reduce defensiveness.",
			Effect: Points(2)},
		{ID: "c4", Title: "Self Control", Category: "Emotional Intelligence",
			Body:   "Pause before reacting. Choose the most constructive response.",
			Effect: SkillUp(SkillSelfControl, 1)},
		{ID: "c5", Title: "Stakeholder Brief", Category: "Presentation Skills",
			Body:   "You clearly frame intent and outcomes for your stakeholders.",
			Effect: Points(3)},
		{ID: "c6", Title: "Optimize Overtime", Category: "Job Cost",
			Body:   "You balance burn rate and deadlines to protect margin.",
			Effect: SkillUp(SkillJobCost, 1)},
		{ID: "c7", Title: "Teach Problem-Solving", Category: "Technical Skills",
			Body:   "You mentor a teammate to solve issues independently.",
			Effect: SkillUp(SkillTechnical, 1)},
		{ID: "c8", Title: "Draw 2 Cards", Category: "Learning Boost",
			Body:   "Curiosity compounds. Draw two additional cards.",
			Effect: Draw(2)},
		{ID: "c9", Title: "Momentum", Category: "Engagement",
			Body:   "Your team rallies behind a clear goal. Advance 2 spaces.",
			Effect: Move(2)},
		{ID: "c10", Title: "Reflection Day", Category: "Well-being",
			Body:   "You create space for reflection. Skip your next turn.",
			Effect: Skip(1)},
	}
}
