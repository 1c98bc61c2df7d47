package engine

import "fmt"

// BoardSize is the number of tiles on the board.
const BoardSize = 30

// TileType represents what happens when a player lands on a tile.
type TileType int

const (
	TileStart TileType = iota
	TileLearn
	TileChallenge
	TileEvent
	TileRest
	TileFinish
)

var tileNames = map[TileType]string{
	TileStart:     "START",
	TileLearn:     "LEARN",
	TileChallenge: "CHALLENGE",
	TileEvent:     "EVENT",
	TileRest:      "REST",
	TileFinish:    "FINISH",
}

func (t TileType) String() string {
	if s, ok := tileNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

func (t TileType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TileType) UnmarshalText(b []byte) error {
	for k, v := range tileNames {
		if v == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown tile type %q", b)
}

// Requirement is the skill check on a challenge tile.
type Requirement struct {
	Skill     Skill `json:"skill"`
	Threshold int   `json:"threshold"`
}

// Met reports whether level passes the check.
func (r Requirement) Met(level int) bool {
	return level >= r.Threshold
}

// Tile is one cell of the board.
type Tile struct {
	Index       int          `json:"index"`
	Type        TileType     `json:"type"`
	Label       string       `json:"label,omitempty"`
	Requirement *Requirement `json:"requirement,omitempty"`
}

// Board is the fixed tile sequence, START at 0 and FINISH at the end.
type Board []Tile

// challengeRequirements rotate across challenge tiles by floor(i/7).
var challengeRequirements = []Requirement{
	{Skill: SkillActiveListening, Threshold: 1},
	{Skill: SkillTechnical, Threshold: 1},
	{Skill: SkillPresentation, Threshold: 1},
	{Skill: SkillJobCost, Threshold: 1},
	{Skill: SkillEmpathy, Threshold: 1},
}

// NewBoard builds the standard board. It is deterministic.
func NewBoard() Board {
	b := make(Board, BoardSize)
	for i := range b {
		t := Tile{Index: i, Type: tileTypeAt(i)}
		if t.Type == TileChallenge {
			req := challengeRequirements[(i/7)%len(challengeRequirements)]
			t.Requirement = &req
			t.Label = "Challenge: " + req.Skill.Label()
		}
		b[i] = t
	}
	return b
}

func tileTypeAt(i int) TileType {
	switch {
	case i == 0:
		return TileStart
	case i == BoardSize-1:
		return TileFinish
	case i%7 == 0:
		return TileChallenge
	case i%5 == 0:
		return TileEvent
	case i%11 == 0:
		return TileRest
	default:
		return TileLearn
	}
}

// Last returns the index of the finish tile.
func (b Board) Last() int {
	return len(b) - 1
}

// Clamp keeps a position on the board.
func (b Board) Clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > b.Last() {
		return b.Last()
	}
	return pos
}
