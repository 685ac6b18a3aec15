package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Supported LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOllama = "ollama"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Vault     VaultConfig       `yaml:"vault"`
	Ledger    LedgerConfig      `yaml:"ledger"`
	Qdrant    QdrantConfig      `yaml:"qdrant"`
	LLM       LLMConfig         `yaml:"llm"`
	Retrieval RetrievalConfig   `yaml:"retrieval"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	if err := c.Qdrant.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Retrieval.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// LedgerConfig holds the SQLite ingest ledger configuration.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// QdrantConfig holds the vector store configuration.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	Dimension  int    `yaml:"dimension"`
}

// Validate validates the Qdrant configuration.
func (c *QdrantConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Collection, validation.Required),
		validation.Field(&c.Dimension, validation.Required, validation.Min(1)),
	)
}

// LLMConfig holds language model and embedding provider configuration.
type LLMConfig struct {
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	EmbedModel string        `yaml:"embed_model"`
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required,
			validation.In(ProviderOpenAI, ProviderGemini, ProviderClaude, ProviderOllama)),
		validation.Field(&c.Model, validation.Required),
	); err != nil {
		return err
	}
	if c.Provider != ProviderOllama && c.APIKey == "" {
		return fmt.Errorf("llm: provider %q requires an api_key", c.Provider)
	}
	return nil
}

// RetrievalConfig tunes the diversity-aware retrieval step.
type RetrievalConfig struct {
	TopK   int     `yaml:"top_k"`
	FetchK int     `yaml:"fetch_k"`
	Lambda float64 `yaml:"lambda"`
}

// Validate validates the retrieval configuration.
func (c *RetrievalConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.TopK, validation.Required, validation.Min(1)),
		validation.Field(&c.FetchK, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("retrieval: lambda %v out of range [0,1]", c.Lambda)
	}
	if c.FetchK < c.TopK {
		return fmt.Errorf("retrieval: fetch_k %d must be >= top_k %d", c.FetchK, c.TopK)
	}
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		Ledger: LedgerConfig{
			Path: "./memomind.db",
		},
		Qdrant: QdrantConfig{
			URL:        "http://localhost:6333",
			Collection: "vector_db",
			Dimension:  1024,
		},
		LLM: LLMConfig{
			Provider: ProviderOllama,
			Model:    "llama3",
			Timeout:  60 * time.Second,
		},
		Retrieval: RetrievalConfig{
			TopK:   10,
			FetchK: 20,
			Lambda: 0.25,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
