package usecase

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestDecodeRepairable(t *testing.T) {
	type payload struct {
		Severity string `json:"severity"`
		Summary  string `json:"summary"`
	}

	t.Run("plain JSON", func(t *testing.T) {
		var out payload
		err := decodeRepairable(`{"severity":"critical","summary":"CVE fix"}`, &out)
		gt.NoError(t, err)
		gt.Equal(t, out.Severity, "critical")
	})

	t.Run("markdown code fences", func(t *testing.T) {
		var out payload
		err := decodeRepairable("```json\n{\"severity\":\"normal\",\"summary\":\"routine\"}\n```", &out)
		gt.NoError(t, err)
		gt.Equal(t, out.Severity, "normal")
		gt.Equal(t, out.Summary, "routine")
	})

	t.Run("bare fences without language tag", func(t *testing.T) {
		var out payload
		err := decodeRepairable("```\n{\"severity\":\"low\"}\n```", &out)
		gt.NoError(t, err)
		gt.Equal(t, out.Severity, "low")
	})

	t.Run("trailing garbage after closing brace", func(t *testing.T) {
		var out payload
		err := decodeRepairable(`{"severity":"important","summary":"ok"}Note: let me know if you need more detail`, &out)
		gt.NoError(t, err)
		gt.Equal(t, out.Severity, "important")
	})

	t.Run("leading and trailing whitespace", func(t *testing.T) {
		var out payload
		err := decodeRepairable("\n  {\"severity\":\"normal\"}  \n", &out)
		gt.NoError(t, err)
		gt.Equal(t, out.Severity, "normal")
	})

	t.Run("no closing brace at all", func(t *testing.T) {
		var out payload
		err := decodeRepairable(`{"severity":"critical","summary":"cut off mid strea`, &out)
		gt.Error(t, err)
	})

	t.Run("not JSON", func(t *testing.T) {
		var out payload
		err := decodeRepairable("Sorry, I cannot analyze this release.", &out)
		gt.Error(t, err)
	})
}
