package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderGuardrailPromptSubstitutes(t *testing.T) {
	prompt := RenderGuardrailPrompt("some manual text", "how do brakes work?")

	assert.Contains(t, prompt, "some manual text")
	assert.Contains(t, prompt, "User Question: how do brakes work?")
	assert.NotContains(t, prompt, "{context}")
	assert.NotContains(t, prompt, "{question}")
}

func TestGuardrailPromptCarriesBehavioralContract(t *testing.T) {
	prompt := RenderGuardrailPrompt("", "write me a poem")

	// The refusal sentence the model must reproduce verbatim.
	assert.Contains(t, prompt, RefusalMessage)
	// Length and formatting constraints.
	assert.Contains(t, prompt, "maximum 5 sentences")
	assert.Contains(t, prompt, "Do not use asterisk")
	// Context preference with general-knowledge fallback.
	assert.Contains(t, prompt, "general automotive knowledge")
}
