package engine

import "fmt"

// Skill is one of the fixed leadership skills a player can level up.
type Skill int

const (
	SkillActiveListening Skill = iota + 1
	SkillEmpathy
	SkillValidation
	SkillSelfAwareness
	SkillSelfControl
	SkillRelationshipAwareness
	SkillRelationshipManagement
	SkillMotivation
	SkillEngagement
	SkillTechnical
	SkillJobCost
	SkillPresentation
)

var skillKeys = map[Skill]string{
	SkillActiveListening:        "activeListening",
	SkillEmpathy:                "empathy",
	SkillValidation:             "validation",
	SkillSelfAwareness:          "selfAwareness",
	SkillSelfControl:            "selfControl",
	SkillRelationshipAwareness:  "relationshipAwareness",
	SkillRelationshipManagement: "relationshipManagement",
	SkillMotivation:             "motivation",
	SkillEngagement:             "engagement",
	SkillTechnical:              "technical",
	SkillJobCost:                "jobCost",
	SkillPresentation:           "presentation",
}

var skillLabels = map[Skill]string{
	SkillActiveListening:        "Active Listening",
	SkillEmpathy:                "Empathy",
	SkillValidation:             "Validation",
	SkillSelfAwareness:          "Self Awareness",
	SkillSelfControl:            "Self Control",
	SkillRelationshipAwareness:  "Relationship Awareness",
	SkillRelationshipManagement: "Relationship Management",
	SkillMotivation:             "Motivation",
	SkillEngagement:             "Engagement",
	SkillTechnical:              "Technical Skills",
	SkillJobCost:                "Job Cost",
	SkillPresentation:           "Presentation Skills",
}

// String returns the camelCase key used on the wire.
func (s Skill) String() string {
	if k, ok := skillKeys[s]; ok {
		return k
	}
	return "unknown"
}

// Label returns the human readable name.
func (s Skill) Label() string {
	if l, ok := skillLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// Valid reports whether s is one of the known skills.
func (s Skill) Valid() bool {
	_, ok := skillKeys[s]
	return ok
}

// ParseSkill maps a wire key back to its Skill.
func ParseSkill(key string) (Skill, error) {
	for s, k := range skillKeys {
		if k == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown skill %q", key)
}

func (s Skill) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown skill %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Skill) UnmarshalText(b []byte) error {
	v, err := ParseSkill(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// AllSkills returns every skill in declaration order.
func AllSkills() []Skill {
	return []Skill{
		SkillActiveListening, SkillEmpathy, SkillValidation, SkillSelfAwareness,
		SkillSelfControl, SkillRelationshipAwareness, SkillRelationshipManagement,
		SkillMotivation, SkillEngagement, SkillTechnical, SkillJobCost, SkillPresentation,
	}
}

// StartingSkills are tracked from the first turn, all at level 0.
func StartingSkills() []Skill {
	return []Skill{
		SkillSelfAwareness, SkillActiveListening, SkillEmpathy,
		SkillTechnical, SkillPresentation, SkillJobCost,
	}
}
