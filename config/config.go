// Package config loads runtime settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mahmoud-mohsen97/Chat-Agents/llm"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Search  SearchConfig
	Vector  VectorConfig
	Reports ReportConfig
	Agent   AgentConfig
}

type ServerConfig struct {
	Host        string
	Port        string
	CORSOrigins string
	BodyLimitMB int
}

type LLMConfig struct {
	Provider       string // "openai", "googleai" or "openai-native"
	Model          string
	EmbeddingModel string
	BaseURL        string
	OpenAIKey      string
	GoogleKey      string
}

type SearchConfig struct {
	Provider   string // "tavily", "brave" or "duckduckgo"
	TavilyKey  string
	BraveKey   string
	MaxResults int
}

type VectorConfig struct {
	Index        string // "memory" or "qdrant"
	QdrantURL    string
	QdrantAPIKey string
	Collection   string
	TopK         int
	ChunkSize    int
	ChunkOverlap int
}

type ReportConfig struct {
	Store string // "file", "memory", "redis", "sqlite" or "postgres"
	Dir   string
	DSN   string // sqlite path, postgres connection string or redis address
}

type AgentConfig struct {
	RecursionLimit int
	Retry          bool
	SessionTTL     time.Duration
	LogLevel       string
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. A missing .env file is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnv("SERVER_PORT", "8000"),
			CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			BodyLimitMB: getEnvAsInt("UPLOAD_LIMIT_MB", 32),
		},
		LLM: LLMConfig{
			Provider:       getEnv("LLM_PROVIDER", llm.ProviderOpenAI),
			Model:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			GoogleKey:      getEnv("GOOGLE_API_KEY", ""),
		},
		Search: SearchConfig{
			Provider:   getEnv("SEARCH_PROVIDER", "tavily"),
			TavilyKey:  getEnv("TAVILY_API_KEY", ""),
			BraveKey:   getEnv("BRAVE_API_KEY", ""),
			MaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 5),
		},
		Vector: VectorConfig{
			Index:        getEnv("VECTOR_INDEX", "memory"),
			QdrantURL:    getEnv("QDRANT_URL", "http://localhost:6333"),
			QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),
			Collection:   getEnv("QDRANT_COLLECTION", "pdf_pages"),
			TopK:         getEnvAsInt("RAG_TOP_K", 4),
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 200),
		},
		Reports: ReportConfig{
			Store: getEnv("REPORT_STORE", "file"),
			Dir:   getEnv("REPORTS_DIR", "reports"),
			DSN:   getEnv("REPORT_STORE_DSN", ""),
		},
		Agent: AgentConfig{
			RecursionLimit: getEnvAsInt("GRAPH_RECURSION_LIMIT", 25),
			Retry:          getEnvAsBool("GRAPH_RETRY", false),
			SessionTTL:     getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderOpenAINative:
		if c.LLM.OpenAIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required")
		}
	case llm.ProviderGoogleAI:
		if c.LLM.GoogleKey == "" {
			problems = append(problems, "GOOGLE_API_KEY is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("LLM_PROVIDER %q is not supported", c.LLM.Provider))
	}

	switch c.Search.Provider {
	case "tavily":
		if c.Search.TavilyKey == "" {
			problems = append(problems, "TAVILY_API_KEY is required")
		}
	case "brave":
		if c.Search.BraveKey == "" {
			problems = append(problems, "BRAVE_API_KEY is required")
		}
	case "duckduckgo":
	default:
		problems = append(problems, fmt.Sprintf("SEARCH_PROVIDER %q is not supported", c.Search.Provider))
	}

	switch c.Vector.Index {
	case "memory":
	case "qdrant":
		if c.Vector.QdrantURL == "" {
			problems = append(problems, "QDRANT_URL is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("VECTOR_INDEX %q is not supported", c.Vector.Index))
	}
	if c.Vector.TopK <= 0 {
		problems = append(problems, "RAG_TOP_K must be positive")
	}
	if c.Vector.ChunkOverlap >= c.Vector.ChunkSize {
		problems = append(problems, "CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}

	switch c.Reports.Store {
	case "file":
		if c.Reports.Dir == "" {
			problems = append(problems, "REPORTS_DIR is required")
		}
	case "memory":
	case "redis", "sqlite", "postgres":
		if c.Reports.DSN == "" {
			problems = append(problems, fmt.Sprintf("REPORT_STORE_DSN is required for the %s store", c.Reports.Store))
		}
	default:
		problems = append(problems, fmt.Sprintf("REPORT_STORE %q is not supported", c.Reports.Store))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ProviderConfig is the model provider selection for llm.NewModel.
func (c *Config) ProviderConfig() llm.ProviderConfig {
	key := c.LLM.OpenAIKey
	if c.LLM.Provider == llm.ProviderGoogleAI {
		key = c.LLM.GoogleKey
	}
	return llm.ProviderConfig{
		Provider:       c.LLM.Provider,
		Model:          c.LLM.Model,
		APIKey:         key,
		BaseURL:        c.LLM.BaseURL,
		EmbeddingModel: c.LLM.EmbeddingModel,
	}
}

// SearchAPIKey is the key of the configured search provider.
func (c *Config) SearchAPIKey() string {
	if c.Search.Provider == "brave" {
		return c.Search.BraveKey
	}
	return c.Search.TavilyKey
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
