package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummary(t *testing.T) {
	t.Parallel()

	t.Run("plain json", func(t *testing.T) {
		t.Parallel()

		got := parseSummary(`{"summary":"Recap.","key_points":["a","b"],"topics_covered":["c"]}`)
		assert.Equal(t, "Recap.", got.Summary)
		assert.Equal(t, []string{"a", "b"}, got.KeyPoints)
		assert.Equal(t, []string{"c"}, got.TopicsCovered)
	})

	t.Run("fenced json", func(t *testing.T) {
		t.Parallel()

		got := parseSummary("```json\n{\"summary\":\"Recap.\",\"key_points\":[],\"topics_covered\":[]}\n```")
		assert.Equal(t, "Recap.", got.Summary)
	})

	t.Run("missing lists default to empty", func(t *testing.T) {
		t.Parallel()

		got := parseSummary(`{"summary":"Recap."}`)
		assert.Equal(t, []string{}, got.KeyPoints)
		assert.Equal(t, []string{}, got.TopicsCovered)
	})

	t.Run("non-json completion is kept verbatim", func(t *testing.T) {
		t.Parallel()

		raw := "The class covered three themes in a free-form discussion."
		got := parseSummary(raw)
		assert.Equal(t, raw, got.Summary)
		assert.Empty(t, got.KeyPoints)
		assert.Empty(t, got.TopicsCovered)
	})
}

func TestBuildSummary(t *testing.T) {
	t.Parallel()

	t.Run("gateway error propagates", func(t *testing.T) {
		t.Parallel()

		_, err := BuildSummary(context.Background(), &fakeLLM{err: errors.New("quota")}, "Title", "text")
		require.Error(t, err)
	})

	t.Run("long transcripts are clipped before prompting", func(t *testing.T) {
		t.Parallel()

		gateway := &fakeLLM{response: `{"summary":"ok"}`}
		long := strings.Repeat("x", maxTranscriptChars+500)

		got, err := BuildSummary(context.Background(), gateway, "Title", long)
		require.NoError(t, err)
		assert.Equal(t, "ok", got.Summary)
	})
}

func TestEncodeStringList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `[]`, encodeStringList(nil))
	assert.Equal(t, `["a","b"]`, encodeStringList([]string{"a", "b"}))
}
