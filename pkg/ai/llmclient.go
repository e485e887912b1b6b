// Package ai wraps the OpenAI-compatible model backend behind the small
// interface the coaching orchestrator needs.
package ai

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	log "github.com/sirupsen/logrus"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

// Stream delivers the text fragments of one model response in arrival order.
type Stream interface {
	// Next advances to the next non-empty text fragment.
	Next() bool
	// Current returns the fragment Next advanced to.
	Current() string
	// Err returns the terminal error, if the stream did not end cleanly.
	Err() error
	Close() error
}

// Client is the model backend interface consumed by the orchestrator.
type Client interface {
	ModelName() string
	Chat(ctx context.Context, instructions string, history []v1.ChatMessage) (string, error)
	ChatStream(ctx context.Context, instructions string, history []v1.ChatMessage) (Stream, error)
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

type LLMClient struct {
	client *openai.Client
	model  string
}

func NewLLMClient(url, model string) *LLMClient {
	var options []option.RequestOption
	if url != "" {
		options = append(options, option.WithBaseURL(url))
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Info("OPENAI_API_KEY environment variable is not set, will try unauthenticated access")
	} else {
		options = append(options, option.WithAPIKey(apiKey))
	}

	client := openai.NewClient(options...)
	return &LLMClient{client: &client, model: model}
}

func (llm *LLMClient) ModelName() string {
	return llm.model
}

func (llm *LLMClient) params(instructions string, history []v1.ChatMessage) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(instructions))
	for _, m := range history {
		if m.Role == v1.ChatRoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    llm.model,
	}
}

// Chat performs a single-shot completion.
func (llm *LLMClient) Chat(ctx context.Context, instructions string, history []v1.ChatMessage) (string, error) {
	resp, err := llm.client.Chat.Completions.New(ctx, llm.params(instructions, history))
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("client didn't return any content choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatStream starts a streamed completion and returns a fragment iterator.
func (llm *LLMClient) ChatStream(ctx context.Context, instructions string, history []v1.ChatMessage) (Stream, error) {
	stream := llm.client.Chat.Completions.NewStreaming(ctx, llm.params(instructions, history))
	return &completionStream{stream: stream}, nil
}

type completionStream struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	current string
}

func (s *completionStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			s.current = delta
			return true
		}
	}
	return false
}

func (s *completionStream) Current() string {
	return s.current
}

func (s *completionStream) Err() error {
	return s.stream.Err()
}

func (s *completionStream) Close() error {
	return s.stream.Close()
}
