package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
)

func TestDefaultModels(t *testing.T) {
	t.Parallel()

	a := NewAnthropicClient(config.LLMConfig{})
	if a.model != anthropic.ModelClaude3_5HaikuLatest {
		t.Fatalf("anthropic default model = %q", a.model)
	}
	if c := NewAnthropicClient(config.LLMConfig{Model: "claude-test"}); c.model != "claude-test" {
		t.Fatalf("configured model ignored, got %q", c.model)
	}

	o := NewOpenAIClient(config.LLMConfig{})
	if o.model != openai.ChatModelGPT4oMini {
		t.Fatalf("openai default model = %q", o.model)
	}
}

func TestCleanJSONResponse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here you go:\n{\"a\":1}\nHope that helps.", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanJSONResponse(tc.in); got != tc.want {
				t.Fatalf("cleanJSONResponse(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
