package model

import (
	"encoding/json"
	"fmt"
)

// EncodeRecords serializes records of a single kind.
func EncodeRecords(recs []Record) ([]byte, error) {
	if recs == nil {
		recs = []Record{}
	}
	return json.Marshal(recs)
}

// DecodeRecords is the inverse of EncodeRecords for the given kind.
func DecodeRecords(kind Kind, data []byte) ([]Record, error) {
	switch kind {
	case KindHabit:
		return decodeAs[HabitLog](data)
	case KindProductivity:
		return decodeAs[ProductivityLog](data)
	case KindMood:
		return decodeAs[MoodLog](data)
	case KindGoal:
		return decodeAs[Goal](data)
	case KindProfile:
		return decodeAs[Profile](data)
	case KindChat:
		return decodeAs[ChatTurn](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecordKind, kind)
	}
}

func decodeAs[T Record](data []byte) ([]Record, error) {
	var typed []T
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	out := make([]Record, len(typed))
	for i, v := range typed {
		out[i] = v
	}
	return out, nil
}
