package metrics

// OracleUsage captures how many classifier invocations a forecast needed.
type OracleUsage struct {
	PointsRequested int `json:"pointsRequested"`
	OracleCalls     int `json:"oracleCalls"`
	CacheHits       int `json:"cacheHits"`
}

// IsZero reports whether usage data is absent.
func (u OracleUsage) IsZero() bool {
	return u.PointsRequested == 0 && u.OracleCalls == 0 && u.CacheHits == 0
}

// TokenUsage captures LLM token counts used to render a reply.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}
