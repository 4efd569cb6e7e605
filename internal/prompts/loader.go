// Package prompts loads the prompt templates sent to the generation service.
// Templates live in JSON files next to this package and are embedded at
// compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Generation is the prompt file used by the pair generator.
const Generation = "generation.json"

// Keys in Generation.
const (
	KeySystem      = "system"
	KeyUserLabeled = "user-labeled"
	KeyUserJSON    = "user-json"
)

//go:embed *.json
var promptFiles embed.FS

var (
	loaded   = make(map[string]map[string]string)
	loadedMu sync.RWMutex
)

// Get returns the template stored under key in the named prompt file.
func Get(filename, key string) (string, error) {
	templates, err := load(filename)
	if err != nil {
		return "", err
	}

	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for prompts the binary cannot run without.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format substitutes {{.Name}} placeholders with values from data.
// Placeholders without a value are left untouched.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func load(filename string) (map[string]string, error) {
	loadedMu.RLock()
	templates, ok := loaded[filename]
	loadedMu.RUnlock()
	if ok {
		return templates, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	loadedMu.Lock()
	loaded[filename] = templates
	loadedMu.Unlock()
	return templates, nil
}
