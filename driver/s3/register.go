package s3

import (
	"fmt"

	"github.com/gobeaver/shelfkit"
)

func init() {
	shelfkit.RegisterDriver("s3", func(cfg *shelfkit.Config) (shelfkit.ObjectStore, error) {
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("s3 endpoint is required")
		}
		if cfg.Container == "" {
			return nil, fmt.Errorf("s3 bucket is required")
		}

		return New(Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Bucket:    cfg.Container,
		})
	})
}
