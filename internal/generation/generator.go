package generation

import "context"

// Request describes one content item to generate. Topic and keywords
// are derived from the task's source group; brand voice and
// requirements come from the batch settings snapshot.
type Request struct {
	Topic          string
	Keywords       []string
	KeyInsights    []string
	BestPractices  []string
	BrandVoice     string
	TargetAudience string
	ContentType    string
	MinWordCount   int
	MaxWordCount   int
}

// Result is the artifact produced by a provider.
type Result struct {
	Title          string
	Body           string
	Excerpt        string
	SEOTitle       string
	SEODescription string
	FocusKeyword   string
	Provider       string
}

// Generator creates a content artifact from a topic/context/brand-voice
// specification. This interface is the boundary between the
// application core and external AI/LLM services.
type Generator interface {
	// Generate produces one content item. Errors are classified via
	// the package sentinels so the task runner can decide retry
	// behavior: rate-limit/quota/provider failures are transient,
	// everything else is permanent.
	Generate(ctx context.Context, req Request) (*Result, error)
}
