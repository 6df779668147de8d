package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Page.MinPageSize < 1 {
		return fmt.Errorf("pagination.min_page_size must be >= 1 (got %d)", c.Page.MinPageSize)
	}
	if c.Page.MaxPageSize < c.Page.MinPageSize {
		return fmt.Errorf("pagination.max_page_size must be >= min_page_size (got %d < %d)",
			c.Page.MaxPageSize, c.Page.MinPageSize)
	}
	if c.Page.DefaultPageSize < c.Page.MinPageSize || c.Page.DefaultPageSize > c.Page.MaxPageSize {
		return fmt.Errorf("pagination.default_page_size must be within [%d, %d] (got %d)",
			c.Page.MinPageSize, c.Page.MaxPageSize, c.Page.DefaultPageSize)
	}

	if c.Catalog.FacetConcurrency < 1 {
		return fmt.Errorf("catalog.facet_concurrency must be >= 1 (got %d)", c.Catalog.FacetConcurrency)
	}
	if c.Catalog.FacetChunkSize < 1 {
		return fmt.Errorf("catalog.facet_chunk_size must be >= 1 (got %d)", c.Catalog.FacetChunkSize)
	}

	return nil
}
