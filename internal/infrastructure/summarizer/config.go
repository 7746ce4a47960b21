package summarizer

// Config carries the per-document-type model settings. MaxInputTokens
// bounds the whole request; ReservedOutputTokens is held back from the
// input budget so the model always has room to answer.
type Config struct {
	Model                string
	MaxInputTokens       int
	ReservedOutputTokens int
}

// InputBudgetChars is the truncation limit for input text, derived
// from the token budget with the chars/4 approximation.
func (c Config) InputBudgetChars() int {
	budget := c.MaxInputTokens - c.ReservedOutputTokens
	if budget < 1 {
		budget = 1
	}
	return budget * charsPerToken
}

const charsPerToken = 4

// ApproximateTokens estimates the token count of a text.
func ApproximateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

var modelConfigs = map[string]Config{
	"legal_document":     {Model: "saul-instruct", MaxInputTokens: 1024, ReservedOutputTokens: 200},
	"email":              {Model: "flan-t5-base", MaxInputTokens: 512, ReservedOutputTokens: 100},
	"receipt":            {Model: "flan-t5-base", MaxInputTokens: 512, ReservedOutputTokens: 100},
	"note":               {Model: "flan-t5-base", MaxInputTokens: 512, ReservedOutputTokens: 100},
	"technical_document": {Model: "bart-base", MaxInputTokens: 1024, ReservedOutputTokens: 200},
	"news_article":       {Model: "flan-t5-base", MaxInputTokens: 512, ReservedOutputTokens: 100},
	"medical_record":     {Model: "bart-base", MaxInputTokens: 1024, ReservedOutputTokens: 150},
	"general":            {Model: "bart-base", MaxInputTokens: 1024, ReservedOutputTokens: 150},
}

// ConfigFor returns the model settings for a document type, falling
// back to the general config for unknown types.
func ConfigFor(documentType string) Config {
	if cfg, ok := modelConfigs[documentType]; ok {
		return cfg
	}
	return modelConfigs["general"]
}
