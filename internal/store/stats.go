package store

import "encoding/json"

// StatBlock is the fixed-key stat record shared by effect definitions and the
// derived character stat vector. Signed: buff deltas are positive, debuff
// deltas negative.
type StatBlock struct {
	Strength  int `json:"strength,omitempty"`
	Intellect int `json:"intellect,omitempty"`
	Vitality  int `json:"vitality,omitempty"`
	Focus     int `json:"focus,omitempty"`
	Charisma  int `json:"charisma,omitempty"`
}

// Add returns the component-wise sum of two stat blocks.
func (s StatBlock) Add(o StatBlock) StatBlock {
	return StatBlock{
		Strength:  s.Strength + o.Strength,
		Intellect: s.Intellect + o.Intellect,
		Vitality:  s.Vitality + o.Vitality,
		Focus:     s.Focus + o.Focus,
		Charisma:  s.Charisma + o.Charisma,
	}
}

// Clamp floors every stat at zero.
func (s StatBlock) Clamp() StatBlock {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	return StatBlock{
		Strength:  clamp(s.Strength),
		Intellect: clamp(s.Intellect),
		Vitality:  clamp(s.Vitality),
		Focus:     clamp(s.Focus),
		Charisma:  clamp(s.Charisma),
	}
}

// IsZero reports whether every stat delta is zero.
func (s StatBlock) IsZero() bool {
	return s == StatBlock{}
}

func encodeStatBlock(s StatBlock) string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// decodeStatBlock treats a malformed payload as an empty stat block; the
// column only feeds the derived aggregation, so a parse error is not worth
// failing a read over.
func decodeStatBlock(raw string) StatBlock {
	var s StatBlock
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return StatBlock{}
	}
	return s
}
