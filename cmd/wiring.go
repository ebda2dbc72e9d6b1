package main

import (
	"github.com/bankdir/ifsc-api/internal/fetcher"
	"github.com/bankdir/ifsc-api/internal/index"
	"github.com/bankdir/ifsc-api/internal/links"
	"github.com/bankdir/ifsc-api/internal/lookup"
)

// buildServices wires the fetcher, link cache, index, and lookup service
// from the loaded config.
func buildServices() (*lookup.Service, *index.Index) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Source.UserAgent,
		Timeout:    cfg.Source.Timeout(),
		MaxRetries: cfg.Source.MaxRetries,
	})

	lister := links.NewLister(cfg.Source.URL, f)
	cache := links.NewCache(lister, cfg.Links.TTL(), nil)
	ix := index.New(cfg.Index.Path, cache, f, cfg.Download.MaxBytes)
	svc := lookup.New(ix, f, cfg.Download.MaxBytes)

	return svc, ix
}
