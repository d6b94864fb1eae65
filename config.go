package shelfkit

import (
	"fmt"

	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Store driver to use (azure, s3, memory)
	Driver string `env:"SHELFKIT_DRIVER,default:azure"`

	// Container (Azure) or bucket (S3) holding the corpus
	Container string `env:"SHELFKIT_CONTAINER"`

	// Azure driver configuration
	AzureConnectionString string `env:"SHELFKIT_AZURE_CONNECTION_STRING"`
	AzureAccountURL       string `env:"SHELFKIT_AZURE_ACCOUNT_URL"` // e.g. https://acct.blob.core.windows.net

	// S3 driver configuration
	S3Endpoint  string `env:"SHELFKIT_S3_ENDPOINT"`
	S3Region    string `env:"SHELFKIT_S3_REGION,default:us-east-1"`
	S3AccessKey string `env:"SHELFKIT_S3_ACCESS_KEY"`
	S3SecretKey string `env:"SHELFKIT_S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"SHELFKIT_S3_USE_SSL,default:true"`

	// Pipeline defaults (CLI flags override)
	ScanPrefix   string `env:"SHELFKIT_SCAN_PREFIX,default:incoming/"`
	TaxonomyRoot string `env:"SHELFKIT_TAXONOMY_ROOT,default:education"`

	// Checksum algorithm for copy verification (md5, sha256, crc32, xxhash)
	Checksum string `env:"SHELFKIT_CHECKSUM,default:sha256"`

	// Bounded content preview size in bytes
	PreviewBytes int64 `env:"SHELFKIT_PREVIEW_BYTES,default:200000"`

	// Store request pacing, requests per second (0 = unlimited)
	RequestsPerSecond float64 `env:"SHELFKIT_REQUESTS_PER_SECOND,default:0"`

	// Logging
	LogLevel string `env:"SHELFKIT_LOG_LEVEL,default:info"`

	// Optional enrichment providers. Absence of their configuration is not
	// an error; the heuristic classifier works without them.
	OpenAIBaseURL string `env:"SHELFKIT_OPENAI_BASE_URL"`
	OpenAIAPIKey  string `env:"SHELFKIT_OPENAI_API_KEY"`
	OpenAIModel   string `env:"SHELFKIT_OPENAI_MODEL,default:gpt-4o-mini"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the config is usable for the selected driver.
func (c *Config) Validate() error {
	switch c.Driver {
	case "azure":
		if c.AzureConnectionString == "" && c.AzureAccountURL == "" {
			return fmt.Errorf("azure driver requires a connection string or account URL")
		}
		if c.Container == "" {
			return fmt.Errorf("container is required")
		}
	case "s3":
		if c.S3Endpoint == "" {
			return fmt.Errorf("s3 driver requires an endpoint")
		}
		if c.Container == "" {
			return fmt.Errorf("container (bucket) is required")
		}
	case "memory":
		// nothing to validate
	case "":
		return fmt.Errorf("driver is required")
	default:
		return fmt.Errorf("unknown driver: %s", c.Driver)
	}

	if _, err := NewHasher(ChecksumAlgorithm(c.Checksum)); err != nil {
		return err
	}

	return nil
}
