package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pmwiki/internal/crawler"
)

func newCrawlCmd(flags *globalFlags) *cobra.Command {
	var cfg crawler.Config
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch every sitemap page of a running server",
		Long: "crawl reads /sitemap.xml from a running server and fetches each page,\n" +
			"warming the catalog snapshot and listing pages that did not answer 200.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			appCfg, l, err := setup(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.BaseURL == "" {
				cfg.BaseURL = localURL(appCfg.Addr)
			}
			c, err := crawler.New(cfg, crawler.WithLogger(l.Named("crawler")))
			if err != nil {
				return err
			}

			report, runErr := c.Run(ctx)
			if report == nil {
				return runErr
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d pages, %d ok, %d failed in %s\n",
				report.Pages, report.OK, report.Failed, report.Duration.Round(time.Millisecond))
			if len(report.Failures) > 0 {
				rows := make([][]string, 0, len(report.Failures))
				for _, f := range report.Failures {
					status := strconv.Itoa(f.Status)
					if f.Err != "" {
						status = f.Err
					}
					rows = append(rows, []string{f.URL, status, f.Duration.Round(time.Millisecond).String()})
				}
				fmt.Fprintln(out, renderTable([]string{"URL", "status", "time"}, rows))
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "", "server origin (default http://localhost plus addr)")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", 0, "concurrent fetchers (default CPU cores * 2)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", crawler.DefaultTimeout, "per-request timeout")
	cmd.Flags().BoolVar(&cfg.API, "api", false, "also fetch /api/models/{slug} and /api/ranking")
	return cmd
}

// localURL turns a listen address such as ":9080" into a local origin.
func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
