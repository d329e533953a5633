package port

import "context"

// ChatRequest is one completion request. System and User are the two messages;
// JSONResponse asks the provider for a JSON-object response format.
type ChatRequest struct {
	System       string
	User         string
	Temperature  float64
	MaxTokens    int
	JSONResponse bool
}

// AIProvider abstracts the AI backend for embeddings and chat completions.
// Implementations can target OpenAI, Ollama, or any compatible API.
type AIProvider interface {
	// ModelName returns the identifier of the chat model being used.
	ModelName() string

	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Chat sends one completion request and returns the response text.
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
