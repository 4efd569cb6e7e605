package generation

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/recipe-alpaca/internal/llm"
	"github.com/jonathan/recipe-alpaca/internal/schemas"
	"github.com/jonathan/recipe-alpaca/internal/types"
)

// Section markers of a labeled reply.
const (
	MarkerInstruction = "INSTRUCTION:"
	MarkerInput       = "INPUT:"
	MarkerOutput      = "OUTPUT:"
)

// ParseLabeled splits a reply of the form
//
//	INSTRUCTION: ... INPUT: ... OUTPUT: ...
//
// into a record. The reply must contain INPUT: exactly once, and OUTPUT:
// exactly once after it. Everything before INPUT: with any INSTRUCTION:
// marker removed is the instruction. Fields are trimmed but not otherwise
// validated.
func ParseLabeled(reply string) (types.Record, error) {
	parts := strings.Split(reply, MarkerInput)
	if len(parts) != 2 {
		return types.Record{}, &ParseError{Token: MarkerInput, Count: len(parts) - 1}
	}

	rest := strings.Split(parts[1], MarkerOutput)
	if len(rest) != 2 {
		return types.Record{}, &ParseError{Token: MarkerOutput, Count: len(rest) - 1}
	}

	return types.Record{
		Instruction: strings.TrimSpace(strings.ReplaceAll(parts[0], MarkerInstruction, "")),
		Input:       strings.TrimSpace(rest[0]),
		Output:      strings.TrimSpace(rest[1]),
	}, nil
}

// ParseJSON decodes a structured reply after checking it against the record schema.
func ParseJSON(reply string) (types.Record, error) {
	cleaned := llm.CleanJSONBlock(reply)
	if err := schemas.ValidateRecord(cleaned); err != nil {
		return types.Record{}, &ParseError{Message: "reply does not match record schema", Cause: err}
	}

	var record types.Record
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return types.Record{}, &ParseError{Message: "failed to decode record", Cause: err}
	}
	record.Instruction = strings.TrimSpace(record.Instruction)
	record.Input = strings.TrimSpace(record.Input)
	record.Output = strings.TrimSpace(record.Output)
	return record, nil
}
