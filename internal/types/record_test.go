package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_JSONFieldNames(t *testing.T) {
	rec := Record{
		Instruction: "Explain the recipe",
		Input:       "How long do I boil the pasta?",
		Output:      "## Boiling\n\n- 10 minutes",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 3)
	assert.Equal(t, "Explain the recipe", raw["instruction"])
	assert.Equal(t, "How long do I boil the pasta?", raw["input"])
	assert.Equal(t, "## Boiling\n\n- 10 minutes", raw["output"])
}

func TestRecord_SingleLineEncoding(t *testing.T) {
	rec := Record{Instruction: "a\nb", Input: "c", Output: "d\ne"}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n", "newlines in fields must be escaped so a record fits on one line")
}
