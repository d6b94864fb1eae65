package memory

import "github.com/gobeaver/shelfkit"

func init() {
	shelfkit.RegisterDriver("memory", func(cfg *shelfkit.Config) (shelfkit.ObjectStore, error) {
		return New(), nil
	})
}
