package run

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotResultVariants(t *testing.T) {
	ok := Ok("wits", map[string]interface{}{"success": true})
	assert.False(t, ok.IsError())
	assert.Equal(t, "ok", ok.Status())

	failed := Failed("uct", "Portal navigation failed")
	assert.True(t, failed.IsError())
	assert.Equal(t, "error", failed.Status())
}

func TestBotResultJSONUnion(t *testing.T) {
	tests := []struct {
		name   string
		result BotResult
		want   string
	}{
		{
			name:   "success carries result, no error key",
			result: Ok("wits", map[string]interface{}{"success": true}),
			want:   `{"bot":"wits","result":{"success":true}}`,
		},
		{
			name:   "failure carries error, no result key",
			result: Failed("uct", "Unknown bot: uct"),
			want:   `{"bot":"uct","error":"Unknown bot: uct"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back BotResult
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.result.Bot, back.Bot)
			assert.Equal(t, tt.result.Err, back.Err)
			assert.Equal(t, tt.result.IsError(), back.IsError())
		})
	}
}

func TestRecordSeal(t *testing.T) {
	rec := NewRecord()
	assert.False(t, rec.Sealed())
	assert.Greater(t, rec.StartedAt(), 0.0)
	assert.Zero(t, rec.EndedAt())

	rec.Append(Ok("gmail", map[string]interface{}{"success": true}))
	rec.Append(Failed("nsfas", "Timed out waiting for OTP confirmation"))
	rec.Seal()

	assert.True(t, rec.Sealed())
	assert.GreaterOrEqual(t, rec.EndedAt(), rec.StartedAt())
	assert.Equal(t, 2, rec.Len())
}

func TestRecordResultsIsACopy(t *testing.T) {
	rec := NewRecord()
	rec.Append(Ok("gmail", nil))

	got := rec.Results()
	got[0] = Failed("gmail", "mutated")

	assert.False(t, rec.Results()[0].IsError())
}

func TestRecordSummary(t *testing.T) {
	rec := NewRecord()
	rec.Append(Ok("gmail", map[string]interface{}{"success": true}))
	rec.Append(Ok("wits", map[string]interface{}{"success": true}))
	rec.Append(Failed("bogus", "Unknown bot: bogus"))
	rec.Seal()

	summary := rec.Summary()
	assert.Equal(t, 3, summary["total"])
	assert.Equal(t, 2, summary["ok"])
	assert.Equal(t, 1, summary["errors"])

	bots, ok := summary["bots"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "ok", bots["gmail"])
	assert.Equal(t, "error", bots["bogus"])
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := NewRecord()
	rec.Append(Ok("wits", map[string]interface{}{"university": "Wits"}))
	rec.Append(Failed("uj", "Application fee payment rejected"))
	rec.Seal()

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, rec.StartedAt(), back.StartedAt())
	assert.Equal(t, rec.EndedAt(), back.EndedAt())
	require.Equal(t, rec.Len(), back.Len())
	assert.Equal(t, rec.Results(), back.Results())
	assert.True(t, back.Sealed())
}
