package generation

import (
	"errors"
	"testing"

	"github.com/jonathan/recipe-alpaca/internal/schemas"
	"github.com/jonathan/recipe-alpaca/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabeled_WellFormed(t *testing.T) {
	reply := "INSTRUCTION: Explain how to make arancini\nINPUT: Leftover risotto\nOUTPUT: **Shape** the rice into balls."

	record, err := ParseLabeled(reply)
	require.NoError(t, err)
	assert.Equal(t, types.Record{
		Instruction: "Explain how to make arancini",
		Input:       "Leftover risotto",
		Output:      "**Shape** the rice into balls.",
	}, record)
}

func TestParseLabeled_TrimsAndAllowsEmptyFields(t *testing.T) {
	record, err := ParseLabeled("   INSTRUCTION:   INPUT:\n\n OUTPUT:  \n")
	require.NoError(t, err)
	assert.Equal(t, types.Record{}, record)
}

func TestParseLabeled_NoInstructionMarker(t *testing.T) {
	record, err := ParseLabeled("Cook it INPUT: what? OUTPUT: well")
	require.NoError(t, err)
	assert.Equal(t, "Cook it", record.Instruction)
}

func TestParseLabeled_Violations(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		token string
		count int
	}{
		{"no INPUT", "INSTRUCTION: a OUTPUT: c", MarkerInput, 0},
		{"two INPUT", "INSTRUCTION: a INPUT: b INPUT: b2 OUTPUT: c", MarkerInput, 2},
		{"no OUTPUT", "INSTRUCTION: a INPUT: b", MarkerOutput, 0},
		{"two OUTPUT", "INSTRUCTION: a INPUT: b OUTPUT: c OUTPUT: d", MarkerOutput, 2},
		{"OUTPUT before INPUT", "OUTPUT: c INPUT: b", MarkerOutput, 0},
		{"empty", "", MarkerInput, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLabeled(tt.reply)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.token, parseErr.Token)
			assert.Equal(t, tt.count, parseErr.Count)
			assert.Contains(t, err.Error(), tt.token)
		})
	}
}

func TestParseJSON_Valid(t *testing.T) {
	reply := "```json\n{\"instruction\": \" Make soup \", \"input\": \"\", \"output\": \"Simmer.\"}\n```"

	record, err := ParseJSON(reply)
	require.NoError(t, err)
	assert.Equal(t, types.Record{Instruction: "Make soup", Output: "Simmer."}, record)
}

func TestParseJSON_SchemaViolation(t *testing.T) {
	_, err := ParseJSON(`{"instruction": "Make soup"}`)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	var validationErr *schemas.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestParseJSON_NotJSON(t *testing.T) {
	_, err := ParseJSON("INSTRUCTION: a INPUT: b OUTPUT: c")
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseJSON_BlankInstruction(t *testing.T) {
	_, err := ParseJSON(`{"instruction": "   ", "input": "", "output": "x"}`)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, err.Error(), "record schema")
}
