package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseStatusAcceptsEnumeratedValues(t *testing.T) {
	cases := map[string]Status{
		"todo":    StatusTodo,
		"doing":   StatusDoing,
		"done":    StatusDone,
		" done ":  StatusDone,
		"\ttodo ": StatusTodo,
	}
	for input, want := range cases {
		got, err := ParseStatus(input)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseStatusRejectsUnknownValues(t *testing.T) {
	for _, input := range []string{"", "archived", "DONE", "Todo", "in-progress"} {
		if _, err := ParseStatus(input); err == nil {
			t.Fatalf("expected ParseStatus(%q) to fail", input)
		} else if !strings.Contains(err.Error(), "invalid status") {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
	}
}

func TestItemJSONShape(t *testing.T) {
	description := "write the report"
	item := Item{
		ID:          "6f1f3f3a-0f6c-4a3e-9f2a-2b8c1d4e5f60",
		Name:        "Task A",
		Status:      StatusDoing,
		Description: &description,
		CreatedAt:   time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:   time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"id"`, `"name"`, `"status"`, `"description"`, `"createdAt"`, `"updatedAt"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("missing %s in %s", key, data)
		}
	}

	item.Description = nil
	data, err = json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"description":null`) {
		t.Fatalf("nil description must serialize as an explicit null, got %s", data)
	}
}
