package service

import (
	"context"
	"encoding/json"
	"strings"

	"academy-scheduler/dto"
	"academy-scheduler/pkg/llm"
)

const summarySystemPrompt = `You summarize live class transcripts for students.
Respond with a JSON object: {"summary": "...", "key_points": ["..."], "topics_covered": ["..."]}.
Keep the summary under 120 words.`

// Transcripts are clipped before prompting; the tail of a long class matters
// less than keeping the request within gateway limits.
const maxTranscriptChars = 24000

// BuildSummary asks the gateway for a structured summary of one class. A
// completion that is not the expected JSON is kept verbatim as the summary
// text with empty lists rather than discarded.
func BuildSummary(ctx context.Context, gateway llm.Gateway, title, transcript string) (*dto.SessionSummary, error) {
	if len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars]
	}

	userPrompt := "Class title: " + title + "\n\nTranscript:\n" + transcript
	completion, err := gateway.Complete(ctx, summarySystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	summary := parseSummary(completion)
	return summary, nil
}

func parseSummary(completion string) *dto.SessionSummary {
	cleaned := strings.TrimSpace(completion)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed dto.SessionSummary
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil && parsed.Summary != "" {
		if parsed.KeyPoints == nil {
			parsed.KeyPoints = []string{}
		}
		if parsed.TopicsCovered == nil {
			parsed.TopicsCovered = []string{}
		}
		return &parsed
	}

	return &dto.SessionSummary{
		Summary:       completion,
		KeyPoints:     []string{},
		TopicsCovered: []string{},
	}
}

func encodeStringList(items []string) string {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
