package extract

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object",
			content: `{"title":"x"}`,
			want:    `{"title":"x"}`,
		},
		{
			name:    "markdown fences",
			content: "```json\n{\"title\":\"x\"}\n```",
			want:    `{"title":"x"}`,
		},
		{
			name:    "surrounding prose",
			content: "Here is the task you asked for: {\"title\":\"x\"} Hope that helps!",
			want:    `{"title":"x"}`,
		},
		{
			name:    "no object at all",
			content: "sorry, I cannot do that",
			want:    "sorry, I cannot do that",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.content); got != tc.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}

func TestParseAudioResponse(t *testing.T) {
	p := NewParser()

	resp, err := p.ParseAudioResponse("```json\n{\"title\":\"Buy milk\",\"description\":\"From the store\",\"priorityLevel\":\"High\",\"deadline\":\"2026-09-01\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "Buy milk" || resp.PriorityLevel != "High" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Deadline == nil || *resp.Deadline != "2026-09-01" {
		t.Errorf("deadline not parsed: %+v", resp.Deadline)
	}

	if _, err := p.ParseAudioResponse("I could not find a task"); err == nil {
		t.Error("expected error for non-JSON content")
	}
}

func TestParseImageResponse_RequiredFields(t *testing.T) {
	p := NewParser()

	resp, err := p.ParseImageResponse(`{"title":"Essay","description":"Write the essay","priority":"high","deadline":null}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "Essay" || resp.Priority != "high" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Deadline != nil {
		t.Errorf("expected nil deadline, got %v", *resp.Deadline)
	}

	missing := []string{
		`{"description":"x","priority":"Low"}`,
		`{"title":"x","priority":"Low"}`,
		`{"title":"x","description":"y"}`,
	}
	for _, content := range missing {
		if _, err := p.ParseImageResponse(content); err == nil {
			t.Errorf("expected required-field error for %s", content)
		}
	}
}
