package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateValueRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		value AggregateValue
	}{
		{
			name:  "Duration",
			value: DurationValue(86400000),
		},
		{
			name:  "Negative duration",
			value: DurationValue(-5),
		},
		{
			name:  "Number",
			value: NumberValue(16.25),
		},
		{
			name:  "String",
			value: StringValue("alice"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := DecodeAggregateValue(tc.value.Kind, tc.value.Encode())
			require.NoError(t, err)
			assert.Equal(t, tc.value, decoded)
		})
	}
}

func TestDecodeAggregateValueRejectsMalformedInput(t *testing.T) {
	_, err := DecodeAggregateValue(ValueKindDuration, "not-a-number")
	assert.Error(t, err)

	_, err = DecodeAggregateValue(ValueKindNumber, "abc")
	assert.Error(t, err)

	_, err = DecodeAggregateValue("unknown", "1")
	assert.Error(t, err)
}

func TestMetadataNumber(t *testing.T) {
	activity := NewActivity("pr-merged-acme-widgets-1", "alice", ActivityPRMerged, testOccurredAt)

	_, ok := activity.MetadataNumber(MetadataKeyTurnaround)
	assert.False(t, ok, "missing metadata is not numeric")

	activity.SetMetadata(MetadataKeyTurnaround, "fast")
	_, ok = activity.MetadataNumber(MetadataKeyTurnaround)
	assert.False(t, ok, "string metadata is not numeric")

	activity.SetMetadata(MetadataKeyTurnaround, int64(1500))
	value, ok := activity.MetadataNumber(MetadataKeyTurnaround)
	assert.True(t, ok)
	assert.Equal(t, float64(1500), value)

	activity.SetMetadata(MetadataKeyTurnaround, 2500.0)
	value, ok = activity.MetadataNumber(MetadataKeyTurnaround)
	assert.True(t, ok)
	assert.Equal(t, float64(2500), value)
}
