package extract

import (
	"strings"
	"testing"

	"github.com/acadease/backend/internal/domain/entities"
)

func TestAudioUserPrompt_EmbedsTranscription(t *testing.T) {
	prompt := audioUserPrompt("Call the dentist tomorrow")

	if !strings.Contains(prompt, "Call the dentist tomorrow") {
		t.Error("transcription missing from prompt")
	}
	if !strings.Contains(prompt, "ONLY a valid JSON object") {
		t.Error("prompt must demand a bare JSON reply")
	}
}

func TestChatSystemPrompt_WithTasks(t *testing.T) {
	prompt := chatSystemPrompt([]entities.Task{
		{
			ID:        "t1",
			Title:     "Math homework",
			Priority:  entities.PriorityHigh,
			Deadline:  "2026-09-04",
			Completed: true,
		},
		{ID: "t2", Title: "Essay"},
	})

	for _, want := range []string{
		`Task: "Math homework"`,
		"Priority: High",
		"Completed: Yes",
		"Deadline: 2026-09-04",
		"ID: t1",
		// Field defaults for the sparse task
		"No description",
		"Priority: Low",
		"Completed: No",
		"Deadline: None",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "has no tasks") {
		t.Error("no-task wording must not appear when tasks exist")
	}
}

func TestChatSystemPrompt_WithoutTasks(t *testing.T) {
	prompt := chatSystemPrompt(nil)

	if !strings.Contains(prompt, "currently has no tasks") {
		t.Error("missing no-task context")
	}
	if !strings.Contains(prompt, "suggest they create some") {
		t.Error("missing no-task guidance item")
	}
}
