// Package genx is the generation capability used by the interview pipeline.
//
// # Core Types
//
// Generator is the provider-neutral contract:
//
//	type Generator interface {
//	    Complete(context.Context, ModelContext) (*Completion, error)
//	    GenerateStream(context.Context, ModelContext) (Stream, error)
//	}
//
// Complete issues one blocking call with the context's tools attached and
// tool choice left to the model; the Completion carries content text plus any
// structured tool calls. GenerateStream issues one streamed call and returns a
// Stream of MessageChunks produced by a background goroutine.
//
// ModelContext bundles system prompts, the message history (text, image
// blobs, tool calls, tool results), tools and sampling parameters. Build one
// with ModelContextBuilder.
//
// Stream is pull-based:
//
//	type Stream interface {
//	    Next() (*MessageChunk, error)
//	    Close() error
//	    CloseWithError(error) error
//	}
//
// Next returns a *State error once the provider finishes; errors.Is(err,
// ErrDone) reports a normal stop. Texts adapts a Stream into an iterator of
// text deltas.
//
// # Providers
//
//   - OpenAIGenerator: any OpenAI-compatible chat completions endpoint
//     (Groq, OpenAI) through github.com/openai/openai-go.
//   - GeminiGenerator: Google Gemini through google.golang.org/genai.
package genx
