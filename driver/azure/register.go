package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/gobeaver/shelfkit"
)

func init() {
	shelfkit.RegisterDriver("azure", func(cfg *shelfkit.Config) (shelfkit.ObjectStore, error) {
		if cfg.Container == "" {
			return nil, fmt.Errorf("azure container name is required")
		}

		if cfg.AzureConnectionString != "" {
			return NewFromConnectionString(cfg.AzureConnectionString, cfg.Container)
		}

		if cfg.AzureAccountURL == "" {
			return nil, fmt.Errorf("azure connection string or account URL is required")
		}

		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure credential: %w", err)
		}

		return NewWithCredential(cfg.AzureAccountURL, cfg.Container, cred)
	})
}
