package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"turath"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"turath"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-1.5-flash"`

	// Chunking. Windows of ChunkSize words advance by ChunkSize-ChunkOverlap,
	// so ChunkOverlap must stay strictly below ChunkSize (see Validate).
	ChunkSize     int `envconfig:"CHUNK_SIZE" default:"400"`
	ChunkOverlap  int `envconfig:"CHUNK_OVERLAP" default:"50"`
	MinChunkWords int `envconfig:"MIN_CHUNK_WORDS" default:"50"`

	// Retrieval and gating. Both thresholds are calibrated to the
	// 1/(1+distance) similarity transform and are kept independently
	// configurable on purpose.
	TopK                         int     `envconfig:"TOP_K" default:"5"`
	ItemSimilarityThreshold      float64 `envconfig:"ITEM_SIMILARITY_THRESHOLD" default:"0.5"`
	AggregateSimilarityThreshold float64 `envconfig:"AGGREGATE_SIMILARITY_THRESHOLD" default:"0.45"`

	// Generation sampling, biased toward extractive answers.
	GenTemperature     float32 `envconfig:"GEN_TEMPERATURE" default:"0.1"`
	GenTopP            float32 `envconfig:"GEN_TOP_P" default:"0.9"`
	GenMaxOutputTokens int32   `envconfig:"GEN_MAX_OUTPUT_TOKENS" default:"300"`

	WorkingLanguage string `envconfig:"WORKING_LANGUAGE" default:"en"`

	EmbedBatchSize         int `envconfig:"EMBED_BATCH_SIZE" default:"100"`
	ExternalTimeoutSeconds int `envconfig:"EXTERNAL_TIMEOUT_SECONDS" default:"60"`

	EnableAPI         bool   `envconfig:"ENABLE_API" default:"true"`
	EnableEmbedWorker bool   `envconfig:"ENABLE_EMBED_WORKER" default:"false"`
	DocumentsDir      string `envconfig:"DOCUMENTS_DIR" default:"data/raw_documents"`
	MigrationPath     string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may also be set in the shell, so .env load errors are ignored.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrInvalidValue)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		// A window that advances by ChunkSize-ChunkOverlap <= 0 words never terminates.
		return fmt.Errorf("%w: CHUNK_OVERLAP must satisfy 0 <= overlap < CHUNK_SIZE", ErrInvalidValue)
	}
	if c.MinChunkWords < 0 {
		return fmt.Errorf("%w: MIN_CHUNK_WORDS must not be negative", ErrInvalidValue)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: TOP_K must be positive", ErrInvalidValue)
	}
	if c.ItemSimilarityThreshold <= 0 || c.ItemSimilarityThreshold > 1 {
		return fmt.Errorf("%w: ITEM_SIMILARITY_THRESHOLD must be in (0, 1]", ErrInvalidValue)
	}
	if c.AggregateSimilarityThreshold <= 0 || c.AggregateSimilarityThreshold > 1 {
		return fmt.Errorf("%w: AGGREGATE_SIMILARITY_THRESHOLD must be in (0, 1]", ErrInvalidValue)
	}
	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("%w: EMBED_BATCH_SIZE must be positive", ErrInvalidValue)
	}
	return nil
}
