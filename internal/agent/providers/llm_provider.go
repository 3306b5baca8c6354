package providers

import "context"

// LLMProvider is what agents need from a language model. The Gemini chat client implements it.
type LLMProvider interface {
	// GenerateStructured decodes a JSON reply into output.
	GenerateStructured(ctx context.Context, prompt string, output any) error
}
