package models

import (
	"fmt"
	"strconv"
	"time"
)

// ValueKind tags an aggregate value so consumers can render it without
// guessing its type
type ValueKind string

const (
	ValueKindDuration ValueKind = "duration"
	ValueKindNumber   ValueKind = "number"
	ValueKindString   ValueKind = "string"
)

// AggregateValue is a strict tagged union over the three value kinds.
// Exactly one of the payload fields is meaningful, selected by Kind.
type AggregateValue struct {
	Kind     ValueKind `json:"kind"`
	Duration int64     `json:"duration,omitempty"` // milliseconds
	Number   float64   `json:"number,omitempty"`
	Text     string    `json:"text,omitempty"`
}

// DurationValue creates a duration aggregate value in milliseconds
func DurationValue(ms int64) AggregateValue {
	return AggregateValue{Kind: ValueKindDuration, Duration: ms}
}

// NumberValue creates a numeric aggregate value
func NumberValue(n float64) AggregateValue {
	return AggregateValue{Kind: ValueKindNumber, Number: n}
}

// StringValue creates a string aggregate value
func StringValue(s string) AggregateValue {
	return AggregateValue{Kind: ValueKindString, Text: s}
}

// Encode returns the primitive payload stored at the database boundary
func (v AggregateValue) Encode() string {
	switch v.Kind {
	case ValueKindDuration:
		return strconv.FormatInt(v.Duration, 10)
	case ValueKindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return v.Text
	}
}

// DecodeAggregateValue rebuilds a tagged value from its stored form
func DecodeAggregateValue(kind ValueKind, raw string) (AggregateValue, error) {
	switch kind {
	case ValueKindDuration:
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return AggregateValue{}, fmt.Errorf("invalid duration value %q: %w", raw, err)
		}
		return DurationValue(ms), nil
	case ValueKindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return AggregateValue{}, fmt.Errorf("invalid number value %q: %w", raw, err)
		}
		return NumberValue(n), nil
	case ValueKindString:
		return StringValue(raw), nil
	default:
		return AggregateValue{}, fmt.Errorf("unknown value kind %q", kind)
	}
}

// Aggregate represents a global derived statistic. Value is nil until
// the first computation writes one.
type Aggregate struct {
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Value       *AggregateValue `json:"value"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ContributorAggregate represents one contributor's value for an
// aggregate, keyed by (aggregate slug, username)
type ContributorAggregate struct {
	AggregateSlug string         `json:"aggregate_slug"`
	Username      string         `json:"username"`
	Value         AggregateValue `json:"value"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
