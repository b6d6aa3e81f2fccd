package translate

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

var (
	WithChatCompleter   = withChatCompleter
	ClassifyOpenAIError = classifyOpenAIError
	DecodeCompletion    = decodeCompletion
	ResponseSchemaName  = responseSchemaName
)
