package flags

import (
	"github.com/spf13/pflag"

	"github.com/balanshq/balans/pkg/ai"
)

// AIFlags holds configuration for talking to the LLM backend. The API key is
// read from the OPENAI_API_KEY environment variable, never from a flag.
type AIFlags struct {
	Endpoint string
	Model    string
}

func NewAIFlags() *AIFlags {
	return &AIFlags{
		Model: ai.DefaultModel,
	}
}

func (f *AIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Endpoint, "ai-endpoint", f.Endpoint, "Base URL for an OpenAI compatible API (empty uses the default)")
	fs.StringVar(&f.Model, "ai-model", f.Model, "Model to use for coaching completions")
}

func (f *AIFlags) GetLLMClient() *ai.LLMClient {
	return ai.NewLLMClient(f.Endpoint, f.Model)
}
