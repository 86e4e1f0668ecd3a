package extraction

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an optional numeric field. MindPal emits numbers, numeric
// strings ("$12,000") or null for the same field depending on the PDF, so
// anything that does not read as a number is treated as absent.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*n = Number{Value: v, Valid: true}
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*n = Number{Value: v, Valid: true}
	}
	return nil
}

func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

func (n Number) IntPtr() *int {
	if !n.Valid {
		return nil
	}
	v := int(math.Round(n.Value))
	return &v
}

// Text is an optional string field. Numbers are rendered as text and blank
// strings count as absent.
type Text struct {
	Value string
	Valid bool
}

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	} else if b[0] == '-' || (b[0] >= '0' && b[0] <= '9') {
		s = string(b)
	} else {
		return nil
	}
	if s = strings.TrimSpace(s); s != "" {
		*t = Text{Value: s, Valid: true}
	}
	return nil
}

func (t Text) Ptr() *string {
	if !t.Valid {
		return nil
	}
	v := t.Value
	return &v
}

// Flag is an optional boolean that also reads "yes"/"no" style strings.
type Flag struct {
	Value bool
	Valid bool
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = Flag{}
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("true")):
		*f = Flag{Value: true, Valid: true}
	case bytes.Equal(b, []byte("false")):
		*f = Flag{Value: false, Valid: true}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "y", "included":
			*f = Flag{Value: true, Valid: true}
		case "false", "no", "n", "not included":
			*f = Flag{Value: false, Valid: true}
		}
	}
	return nil
}

func (f Flag) Ptr() *bool {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// TextList is an optional list of strings. A single string becomes a
// one-element list; blank entries are dropped.
type TextList []string

func (l *TextList) UnmarshalJSON(b []byte) error {
	*l = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var t Text
		_ = t.UnmarshalJSON(b)
		if t.Valid {
			*l = TextList{t.Value}
		}
		return nil
	}
	var raw []Text
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	for _, t := range raw {
		if t.Valid {
			*l = append(*l, t.Value)
		}
	}
	return nil
}
