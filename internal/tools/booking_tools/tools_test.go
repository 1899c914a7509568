package booking_tools

import (
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsched/internal/schedule"
)

func TestBookingToolsRegistration(t *testing.T) {
	// Smoke test to ensure the tool definitions are valid
	assert.NotNil(t, RegisterBookingTools)
}

func TestParseSlotArgs(t *testing.T) {
	start, end, errResult := parseSlotArgs(map[string]interface{}{
		"start": "2025-01-06T12:45:00+05:30",
		"end":   "2025-01-06T13:30:00+05:30",
	})
	require.Nil(t, errResult)
	assert.Equal(t, 45*time.Minute, end.Sub(start))

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing start", map[string]interface{}{"end": "2025-01-06T13:30:00+05:30"}},
		{"missing end", map[string]interface{}{"start": "2025-01-06T12:45:00+05:30"}},
		{"malformed start", map[string]interface{}{"start": "noon", "end": "2025-01-06T13:30:00+05:30"}},
		{"non-string start", map[string]interface{}{"start": 42.0, "end": "2025-01-06T13:30:00+05:30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, errResult := parseSlotArgs(tt.args)
			assert.NotNil(t, errResult)
		})
	}
}

func TestEngineErrorResult(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not connected", schedule.ErrNotConnected, "not connected"},
		{"slot taken", schedule.ErrSlotTaken, "no longer available"},
		{"validation", &schedule.ValidationError{Field: "email"}, "email"},
		{"provider", &schedule.ProviderError{Op: "freebusy query", Err: errors.New("boom")}, "provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engineErrorResult(tt.err)
			require.NotNil(t, result)
			assert.True(t, result.IsError)

			require.NotEmpty(t, result.Content)
			text, ok := mcp.AsTextContent(result.Content[0])
			require.True(t, ok)
			assert.Contains(t, text.Text, tt.want)
		})
	}
}
