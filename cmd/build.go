package cmd

import (
	"log/slog"

	"github.com/seo-optimizer/seoscore/analyzer"
	"github.com/seo-optimizer/seoscore/config"
	"github.com/seo-optimizer/seoscore/fetcher"
	"github.com/seo-optimizer/seoscore/logging"
)

// newAnalyzer wires config → static fetcher + browser renderer → retriever →
// analyzer. Stage events are logged through slog.
func newAnalyzer(c *config.Config, opts ...analyzer.Option) *analyzer.Analyzer {
	recorder := logging.NewSlogRecorder(slog.Default())

	retriever := fetcher.NewRetriever(
		fetcher.NewHTTPFetcher(c.Fetch),
		fetcher.NewBrowserRenderer(c.Render, c.Fetch.UserAgent),
		recorder,
	)

	return analyzer.New(retriever, append([]analyzer.Option{analyzer.WithRecorder(recorder)}, opts...)...)
}
