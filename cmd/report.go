package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	repository "github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/internal/domain/format"
	"github.com/okian/pmwiki/internal/domain/scoring"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderTable draws rows under headers with a rounded border. The first
// column is styled as a label column.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func newScoreCmd() *cobra.Command {
	var in scoring.Input
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute a value score",
		Long:  "score prints round((capacity*36 + power) / (price/10000)), or a dash when any input is missing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), format.Score(scoring.ValueScore(in)))
			return nil
		},
	}
	cmd.Flags().Float64Var(&in.OriginalPrice, "price", 0, "original price in KRW")
	cmd.Flags().Float64Var(&in.BatteryCapacity, "capacity", 0, "battery capacity")
	cmd.Flags().Float64Var(&in.MotorPowerPeak, "power", 0, "peak motor power in W")
	return cmd
}

func newRankingCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Print the value ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, l, err := setup(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := catalogStore(ctx, cfg, l)
			if err != nil {
				return err
			}
			defer store.Close()

			top, err := newService(cfg, store, l).TopRanked(ctx, limit)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(top))
			for _, e := range top {
				rows = append(rows, []string{
					strconv.Itoa(e.Rank),
					e.Manufacturer + " " + e.ModelName,
					e.CategoryLabel,
					format.Score(e.Score, true),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"순위", "모델", "카테고리", "스코어"}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries")
	return cmd
}

func newCompareCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <slug> <slug> [slug]",
		Short: "Compare models side by side",
		Args:  cobra.RangeArgs(compare.MinItems, compare.DefaultMaxItems),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, l, err := setup(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := catalogStore(ctx, cfg, l)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := newService(cfg, store, l)
			_, set, _ := svc.CompareSession(ctx, "")
			for _, slug := range args {
				if _, err := svc.AddToCompare(ctx, set, compare.Item{Slug: slug}); err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return fmt.Errorf("unknown model %q", slug)
					}
					return err
				}
			}

			t := svc.CompareTable(ctx, set)
			if t.Degraded {
				return errors.New("loading models failed")
			}
			if t.NeedMore {
				return fmt.Errorf("need at least %d distinct models", compare.MinItems)
			}
			headers := []string{""}
			for _, c := range t.Columns {
				headers = append(headers, c.Manufacturer+" "+c.ModelName)
			}
			rows := make([][]string, 0, len(t.Rows))
			for _, r := range t.Rows {
				rows = append(rows, append([]string{r.Label}, r.Values...))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
			return nil
		},
	}
}
