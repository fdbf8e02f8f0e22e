// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// StoreURL is the base URL of the Supabase project backing the data
	// warehouse, e.g. "https://xyz.supabase.co".
	StoreURL string `koanf:"store_url"`

	// StoreAPIKey authenticates REST calls against the store.
	StoreAPIKey string `koanf:"store_api_key"`

	// StoreTimeoutSeconds bounds each store round trip.
	StoreTimeoutSeconds int `koanf:"store_timeout_seconds"`

	// EventPageSize caps the number of events fetched per aggregation.
	EventPageSize int `koanf:"event_page_size"`

	// PersonPageSize caps persons fetched per event during aggregation.
	PersonPageSize int `koanf:"person_page_size"`

	// ItemPageSize caps detected items fetched per event during aggregation.
	ItemPageSize int `koanf:"item_page_size"`

	// MaxListLimit caps GET /api/events?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// OpenAIAPIKey enables narrative report generation when set.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// OpenAIBaseURL overrides the completion API endpoint.
	OpenAIBaseURL string `koanf:"openai_base_url"`

	// OpenAIModel selects the completion model.
	OpenAIModel string `koanf:"openai_model"`

	// OpenAIMaxTokens caps completion length.
	OpenAIMaxTokens int `koanf:"openai_max_tokens"`

	// PromptsPath points at the narrative prompt template file.
	PromptsPath string `koanf:"prompts_path"`
}

// New creates a Config populated with defaults. Credentials have no default;
// they come from the environment or a config file via Load.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8000",
		StoreTimeoutSeconds: 15,
		EventPageSize:       1_000,
		PersonPageSize:      10_000,
		ItemPageSize:        50_000,
		MaxListLimit:        1_000,
		OpenAIModel:         "gpt-4o-mini",
		OpenAIMaxTokens:     1024,
		PromptsPath:         "configs/prompts.yaml",
	}
}
