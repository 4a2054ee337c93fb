package gemini

// promptData is the template context for the article prompt.
type promptData struct {
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

// articleSchema is the JSON document the model is asked to return.
type articleSchema struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	Excerpt        string `json:"excerpt"`
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
	FocusKeyword   string `json:"focus_keyword"`
}
