package llm

// Message is a single entry in a conversation history.
type Message struct {
	// Role is one of "system", "user", "assistant", or "tool".
	Role string

	// Content is the text content of the message.
	Content string

	// Name is an optional participant name.
	Name string

	// ToolCalls contains tool invocations requested by the assistant.
	ToolCalls []ToolCall

	// ToolCallID is set when Role is "tool", identifying which call this answers.
	ToolCallID string
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	// ID is the provider-assigned identifier for this call.
	ID string

	// Name is the function name.
	Name string

	// Arguments is the JSON-encoded argument object.
	Arguments string
}

// ToolDefinition describes a callable function offered to the model.
type ToolDefinition struct {
	// Name is the function's unique identifier.
	Name string

	// Description explains what the function does.
	Description string

	// Parameters is the JSON Schema for the function's arguments.
	Parameters map[string]any
}

// ModelCapabilities describes what a model supports.
type ModelCapabilities struct {
	// ContextWindow is the maximum token count for input + output.
	ContextWindow int

	// MaxOutputTokens is the maximum tokens one completion may generate.
	MaxOutputTokens int

	// SupportsToolCalling indicates native function calling support.
	SupportsToolCalling bool

	// SupportsStreaming indicates streaming completion support.
	SupportsStreaming bool
}
