package llmtypes

// WithModel sets the model ID
func WithModel(model string) CallOption {
	return func(opts *CallOptions) {
		opts.Model = model
	}
}

// WithTemperature sets the temperature
func WithTemperature(temperature float64) CallOption {
	return func(opts *CallOptions) {
		opts.Temperature = temperature
	}
}

// WithReasoningEffort sets the reasoning effort for reasoning models
func WithReasoningEffort(effort string) CallOption {
	return func(opts *CallOptions) {
		opts.ReasoningEffort = effort
	}
}

// WithVerbosity sets the response verbosity
func WithVerbosity(verbosity string) CallOption {
	return func(opts *CallOptions) {
		opts.Verbosity = verbosity
	}
}

// WithStore asks the provider to keep the completion
func WithStore(store bool) CallOption {
	return func(opts *CallOptions) {
		opts.Store = store
	}
}

// ApplyOptions folds options into a CallOptions value.
func ApplyOptions(options ...CallOption) *CallOptions {
	opts := &CallOptions{}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

// TextPart creates a single text part message content
func TextPart(role ChatMessageType, text string) MessageContent {
	return MessageContent{
		Role:  role,
		Parts: []ContentPart{TextContent{Text: text}},
	}
}

// TextParts creates a message content with multiple text parts
func TextParts(role ChatMessageType, texts ...string) MessageContent {
	parts := make([]ContentPart, len(texts))
	for i, text := range texts {
		parts[i] = TextContent{Text: text}
	}
	return MessageContent{
		Role:  role,
		Parts: parts,
	}
}
