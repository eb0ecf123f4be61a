package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldKind names the expected type of one schema field.
type FieldKind string

const (
	FieldString FieldKind = "string"
	FieldList   FieldKind = "list"
	FieldNumber FieldKind = "number"
)

// Schema maps field names to the kind the model should emit for them.
type Schema map[string]FieldKind

const extractSystemPrompt = "You are a data extraction assistant. Extract information according to the provided schema and return valid JSON."

// ExtractStructured asks the model to emit JSON for the schema and parses it
// leniently. On any failure the returned map is empty and the error describes
// what went wrong; callers treat the step as best-effort.
func ExtractStructured(ctx context.Context, client Client, prompt string, schema Schema) (map[string]any, error) {
	messages := []Message{
		{Role: RoleSystem, Content: extractSystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf("Schema: %s\n\nText: %s\n\nExtract the data and return as JSON.", describeSchema(schema), prompt)},
	}

	raw, err := client.Complete(ctx, messages, Options{Temperature: 0.3})
	if err != nil {
		return map[string]any{}, fmt.Errorf("structured extraction: %w", err)
	}

	block, ok := JSONBlock(raw)
	if !ok {
		return map[string]any{}, fmt.Errorf("structured extraction: no JSON object in response")
	}

	out := map[string]any{}
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return map[string]any{}, fmt.Errorf("structured extraction: %w", err)
	}
	return out, nil
}

// JSONBlock returns the substring from the first '{' to the last '}' of raw.
// Models often wrap JSON in prose or code fences; this recovers the payload.
func JSONBlock(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// StringList coerces a decoded JSON value into a list of trimmed strings.
func StringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func describeSchema(schema Schema) string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, schema[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
