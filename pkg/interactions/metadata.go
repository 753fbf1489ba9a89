// ABOUTME: Usage accounting and grounding metadata attached to an interaction
// ABOUTME: Token counts are pointers so "absent" and "zero" stay distinguishable

package interactions

// Usage reports token accounting for an interaction.
type Usage struct {
	TotalInputTokens     *int `json:"total_input_tokens,omitempty"`
	TotalOutputTokens    *int `json:"total_output_tokens,omitempty"`
	TotalReasoningTokens *int `json:"total_reasoning_tokens,omitempty"`
	TotalCachedTokens    *int `json:"total_cached_tokens,omitempty"`
	TotalToolUseTokens   *int `json:"total_tool_use_tokens,omitempty"`
	TotalTokens          *int `json:"total_tokens,omitempty"`
}

// HasData reports whether any count was reported, including zero.
func (u *Usage) HasData() bool {
	if u == nil {
		return false
	}
	return u.TotalInputTokens != nil ||
		u.TotalOutputTokens != nil ||
		u.TotalReasoningTokens != nil ||
		u.TotalCachedTokens != nil ||
		u.TotalToolUseTokens != nil ||
		u.TotalTokens != nil
}

// Total returns TotalTokens, or 0 when it was not reported.
func (u *Usage) Total() int {
	if u == nil || u.TotalTokens == nil {
		return 0
	}
	return *u.TotalTokens
}

// GroundingMetadata links an answer to the web sources it used.
type GroundingMetadata struct {
	WebSearchQueries []string         `json:"web_search_queries,omitempty"`
	GroundingChunks  []GroundingChunk `json:"grounding_chunks,omitempty"`
}

// GroundingChunk is one cited source.
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// WebSource is a web page cited by grounding.
type WebSource struct {
	URI    string `json:"uri,omitempty"`
	Title  string `json:"title,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// URLContextMetadata reports the fetch status of URLs the model retrieved.
type URLContextMetadata struct {
	URLMetadata []URLMetadata `json:"url_metadata,omitempty"`
}

// URLMetadata is the retrieval outcome for one URL.
type URLMetadata struct {
	RetrievedURL       string             `json:"retrieved_url,omitempty"`
	URLRetrievalStatus URLRetrievalStatus `json:"url_retrieval_status,omitempty"`
}
