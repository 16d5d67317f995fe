// migrate_items upserts a YAML item catalog into an inventory data file.
// Known codes get the catalog price and reorder level; their quantities are
// left alone. Unknown codes are added with the catalog quantity.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"stockroom/internal/config"
	"stockroom/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	var (
		itemsPath = flag.String("items", "configs/items.yaml", "path to items.yaml")
		dataPath  = flag.String("data", "data/inventory_management.dat", "path to the inventory data file")
	)
	flag.Parse()

	items, err := config.LoadItems(*itemsPath)
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("no items in yaml")
	}

	st, err := store.New(*dataPath, &logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	created := 0
	updated := 0
	for _, it := range items {
		err = st.Update(it.Code, it.Price, it.ReorderLevel)
		if err == nil {
			updated++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("update %s: %w", it.Code, err)
		}
		if err = st.Add(it); err != nil {
			return fmt.Errorf("create %s: %w", it.Code, err)
		}
		created++
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}
