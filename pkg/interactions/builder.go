// ABOUTME: Fluent builder for CreateInteractionRequest plus part constructors
// ABOUTME: Build validates, so an invalid request never reaches the transport

package interactions

import "encoding/json"

// InteractionBuilder assembles a CreateInteractionRequest.
type InteractionBuilder struct {
	req CreateInteractionRequest
}

// NewInteraction starts a request for model.
func NewInteraction(model string) *InteractionBuilder {
	return &InteractionBuilder{req: CreateInteractionRequest{Model: model}}
}

func (b *InteractionBuilder) WithModel(model string) *InteractionBuilder {
	b.req.Model = model
	return b
}

func (b *InteractionBuilder) WithAgent(agent string) *InteractionBuilder {
	b.req.Agent = agent
	return b
}

func (b *InteractionBuilder) WithText(text string) *InteractionBuilder {
	b.req.Input = TextInput(text)
	return b
}

func (b *InteractionBuilder) WithContents(parts ...Content) *InteractionBuilder {
	b.req.Input = ContentInput(parts...)
	return b
}

func (b *InteractionBuilder) WithTurns(turns ...Turn) *InteractionBuilder {
	b.req.Input = TurnsInput(turns...)
	return b
}

func (b *InteractionBuilder) WithSystemInstruction(s string) *InteractionBuilder {
	b.req.SystemInstruction = s
	return b
}

func (b *InteractionBuilder) WithTools(tools ...Tool) *InteractionBuilder {
	b.req.Tools = append(b.req.Tools, tools...)
	return b
}

// WithFunctions declares client-side functions as function tools.
func (b *InteractionBuilder) WithFunctions(decls ...FunctionDeclaration) *InteractionBuilder {
	for _, d := range decls {
		b.req.Tools = append(b.req.Tools, FunctionTool(d))
	}
	return b
}

func (b *InteractionBuilder) config() *GenerationConfig {
	if b.req.GenerationConfig == nil {
		b.req.GenerationConfig = &GenerationConfig{}
	}
	return b.req.GenerationConfig
}

func (b *InteractionBuilder) WithTemperature(t float64) *InteractionBuilder {
	b.config().Temperature = &t
	return b
}

func (b *InteractionBuilder) WithTopP(p float64) *InteractionBuilder {
	b.config().TopP = &p
	return b
}

func (b *InteractionBuilder) WithSeed(seed int64) *InteractionBuilder {
	b.config().Seed = &seed
	return b
}

func (b *InteractionBuilder) WithMaxOutputTokens(n int) *InteractionBuilder {
	b.config().MaxOutputTokens = &n
	return b
}

func (b *InteractionBuilder) WithStopSequences(seqs ...string) *InteractionBuilder {
	b.config().StopSequences = seqs
	return b
}

func (b *InteractionBuilder) WithThinkingLevel(level string) *InteractionBuilder {
	b.config().ThinkingLevel = level
	return b
}

func (b *InteractionBuilder) WithThinkingSummaries(mode string) *InteractionBuilder {
	b.config().ThinkingSummaries = mode
	return b
}

func (b *InteractionBuilder) WithResponseModalities(modalities ...string) *InteractionBuilder {
	b.req.ResponseModalities = modalities
	return b
}

// WithResponseFormat asks for structured output matching schema.
func (b *InteractionBuilder) WithResponseFormat(schema json.RawMessage) *InteractionBuilder {
	b.req.ResponseFormat = schema
	b.req.ResponseMIMEType = "application/json"
	return b
}

func (b *InteractionBuilder) WithPreviousInteraction(id string) *InteractionBuilder {
	b.req.PreviousInteractionID = id
	return b
}

func (b *InteractionBuilder) WithStore(store bool) *InteractionBuilder {
	b.req.Store = &store
	return b
}

func (b *InteractionBuilder) WithBackground(background bool) *InteractionBuilder {
	b.req.Background = &background
	return b
}

// Build validates and returns a copy of the request.
func (b *InteractionBuilder) Build() (*CreateInteractionRequest, error) {
	req := b.req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Part constructors.

func NewText(text string) TextContent { return TextContent{Text: text} }

func NewThought(text string) ThoughtContent { return ThoughtContent{Text: text} }

func NewThoughtSignature(sig string) ThoughtSignatureContent {
	return ThoughtSignatureContent{Signature: sig}
}

func NewFunctionCall(id, name string, args json.RawMessage) FunctionCallContent {
	return FunctionCallContent{ID: id, Name: name, Arguments: args}
}

func NewFunctionResult(name, callID string, result json.RawMessage) FunctionResultContent {
	return FunctionResultContent{Name: name, CallID: callID, Result: result}
}

func NewImageData(base64Data, mimeType string) ImageContent {
	return ImageContent{Data: base64Data, MIMEType: mimeType}
}

func NewImageURI(uri, mimeType string) ImageContent {
	return ImageContent{URI: uri, MIMEType: mimeType}
}

func NewAudioData(base64Data, mimeType string) AudioContent {
	return AudioContent{Data: base64Data, MIMEType: mimeType}
}

func NewAudioURI(uri, mimeType string) AudioContent {
	return AudioContent{URI: uri, MIMEType: mimeType}
}

func NewVideoData(base64Data, mimeType string) VideoContent {
	return VideoContent{Data: base64Data, MIMEType: mimeType}
}

func NewVideoURI(uri, mimeType string) VideoContent {
	return VideoContent{URI: uri, MIMEType: mimeType}
}

func NewDocumentData(base64Data, mimeType string) DocumentContent {
	return DocumentContent{Data: base64Data, MIMEType: mimeType}
}

func NewDocumentURI(uri, mimeType string) DocumentContent {
	return DocumentContent{URI: uri, MIMEType: mimeType}
}
