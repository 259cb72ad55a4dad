package model

import (
	"fmt"
	"strings"
)

// Kind names one of the record kinds stored per user.
type Kind string

const (
	KindProfile      Kind = "profile"
	KindGoal         Kind = "goal"
	KindHabit        Kind = "habit"
	KindProductivity Kind = "productivity"
	KindMood         Kind = "mood"
	KindChat         Kind = "chat"
)

// Kinds lists every valid kind in a stable order.
var Kinds = []Kind{KindProfile, KindGoal, KindHabit, KindProductivity, KindMood, KindChat}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRecordKind, s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindProfile, KindGoal, KindHabit, KindProductivity, KindMood, KindChat:
		return true
	}
	return false
}

// DateKeyed reports whether the kind holds at most one record per user per day.
func (k Kind) DateKeyed() bool {
	return k == KindHabit || k == KindProductivity
}

func (k Kind) String() string { return string(k) }
