package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/loan-match/backend/internal/analysis/match"
	"github.com/zhouzirui/loan-match/backend/internal/config"
	"github.com/zhouzirui/loan-match/backend/internal/repository/catalog"
	"github.com/zhouzirui/loan-match/backend/internal/service/ai"
)

func newMatchCmd(opts *rootOptions) *cobra.Command {
	criteria := match.DefaultCriteria()
	top := match.TopN

	cmd := &cobra.Command{
		Use:   "match",
		Short: "List the best matching products for the given criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			store, closeCatalog, err := catalog.Build(ctx, cfg.Catalog, cfg.Redis, opts.logger)
			if err != nil {
				return err
			}
			defer closeCatalog()

			items, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}

			ranked := match.Top(match.Filter(items, criteria), top)
			return printRanked(cmd, ranked)
		},
	}

	cmd.Flags().StringVarP(&criteria.Search, "search", "s", criteria.Search, "bank name filter (case-insensitive substring)")
	cmd.Flags().Float64Var(&criteria.MaxAPR, "max-apr", criteria.MaxAPR, "maximum APR in percent")
	cmd.Flags().Int64Var(&criteria.MinIncome, "min-income", criteria.MinIncome, "minimum income threshold")
	cmd.Flags().IntVar(&criteria.MinCreditScore, "min-credit-score", criteria.MinCreditScore, "minimum credit score threshold")
	cmd.Flags().IntVarP(&top, "top", "n", top, "number of matches to show")
	return cmd
}

func printRanked(cmd *cobra.Command, ranked []match.Ranked) error {
	out := cmd.OutOrStdout()
	if len(ranked) == 0 {
		_, err := fmt.Fprintln(out, "No products match these criteria.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tBANK\tPRODUCT\tAPR\tMIN INCOME\tMIN SCORE\tBADGES")
	for _, r := range ranked {
		rank := fmt.Sprintf("%d", r.Rank)
		if r.BestMatch {
			rank += " (Best Match)"
		}

		badges := make([]string, len(r.Badges))
		for i, b := range r.Badges {
			badges[i] = string(b)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%%\t%s\t%d\t%s\n",
			rank, r.Product.ID, r.Product.Bank, r.Product.Name,
			ai.FormatAPR(r.Product.RateAPR), ai.FormatIncome(r.Product.MinIncome),
			r.Product.MinCreditScore, strings.Join(badges, ", "))
	}
	return tw.Flush()
}
