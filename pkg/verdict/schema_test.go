package verdict

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplySchema(t *testing.T) {
	s := ReplySchema()
	require.NotNil(t, s)
	require.NotNil(t, s.Properties)

	for _, key := range []string{"response", "approved", "reason"} {
		_, ok := s.Properties.Get(key)
		assert.True(t, ok, "missing property %q", key)
	}

	approved, _ := s.Properties.Get("approved")
	assert.Equal(t, "boolean", approved.Type)
}

func TestHistorySchema(t *testing.T) {
	s := HistorySchema()
	require.NotNil(t, s)
	assert.Equal(t, "array", s.Type)
	require.NotNil(t, s.Items)

	role, ok := s.Items.Properties.Get("role")
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"user", "assistant", "system"}, role.Enum)
}

func TestVerdictSchemaMarshals(t *testing.T) {
	data, err := json.Marshal(VerdictSchema())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"success"`)
	assert.Contains(t, string(data), `"error"`)
}
