package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Answer is a user-provided value. The concrete type decides which question kind it fits:
// Choice for single-choice, Selection for multi-choice, Number for numeric.
type Answer interface {
	Kind() Kind
	isAnswer()
}

// Choice answers a single-choice question.
type Choice string

// Selection answers a multi-choice question. Order is the order options were picked.
type Selection []string

// Number answers a numeric question.
type Number float64

func (Choice) Kind() Kind    { return KindSingleChoice }
func (Selection) Kind() Kind { return KindMultiChoice }
func (Number) Kind() Kind    { return KindNumeric }

func (Choice) isAnswer()    {}
func (Selection) isAnswer() {}
func (Number) isAnswer()    {}

// Contains reports whether option is selected.
func (s Selection) Contains(option string) bool {
	for _, o := range s {
		if o == option {
			return true
		}
	}
	return false
}

// Toggle removes option when selected and appends it otherwise. The receiver is not modified.
func (s Selection) Toggle(option string) Selection {
	out := make(Selection, 0, len(s)+1)
	removed := false
	for _, o := range s {
		if o == option {
			removed = true
			continue
		}
		out = append(out, o)
	}
	if !removed {
		out = append(out, option)
	}
	return out
}

// Unanswered reports whether a numeric value is the zero/placeholder value.
func (n Number) Unanswered() bool {
	return n == 0 || math.IsNaN(float64(n))
}

// Finite reports whether n can be stored; NaN and ±Inf have no JSON form.
func (n Number) Finite() bool {
	return !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
}

// AnswerSet maps question keys to answers.
type AnswerSet map[string]Answer

// Clone returns a copy that shares nothing with the receiver.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		if sel, ok := v.(Selection); ok {
			v = append(Selection(nil), sel...)
		}
		out[k] = v
	}
	return out
}

// Number returns the numeric answer stored under key, or false when absent or unanswered.
func (a AnswerSet) Number(key string) (float64, bool) {
	n, ok := a[key].(Number)
	if !ok || n.Unanswered() {
		return 0, false
	}
	return float64(n), true
}

// Choice returns the single-choice answer stored under key, or false when absent or empty.
func (a AnswerSet) Choice(key string) (string, bool) {
	c, ok := a[key].(Choice)
	if !ok || c == "" {
		return "", false
	}
	return string(c), true
}

// MarshalJSON writes every answer as its natural JSON value.
func (a AnswerSet) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(a))
	for k, v := range a {
		switch t := v.(type) {
		case Choice:
			raw[k] = string(t)
		case Selection:
			if t == nil {
				t = Selection{}
			}
			raw[k] = []string(t)
		case Number:
			if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
				return nil, fmt.Errorf("answer %q: non-finite number", k)
			}
			raw[k] = float64(t)
		default:
			return nil, fmt.Errorf("answer %q: unsupported type %T", k, v)
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON restores answers from their natural JSON values.
func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	out := make(AnswerSet, len(raw))
	for k, v := range raw {
		if isNull(v) {
			continue
		}
		ans, err := DecodeAnswer(v)
		if err != nil {
			return fmt.Errorf("answer %q: %w", k, err)
		}
		out[k] = ans
	}
	*a = out
	return nil
}

// DecodeAnswer picks the answer variant from the JSON token type.
func DecodeAnswer(data json.RawMessage) (Answer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty answer", ErrMalformedData)
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		return Choice(s), nil
	case '[':
		var s []string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		return Selection(s), nil
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		return Number(n), nil
	}
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
