package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/odds-edge/internal/comparator"
	"github.com/yourusername/odds-edge/internal/models"
	"github.com/yourusername/odds-edge/internal/service"
)

var (
	scanSport    string
	scanMarkets  []string
	scanBetsOnly bool
	scanLimit    int
	scanJSON     bool
)

func init() {
	scanCmd.Flags().StringVarP(&scanSport, "sport", "s", "", "Sport key (defaults to the first configured sport)")
	scanCmd.Flags().StringSliceVarP(&scanMarkets, "markets", "m", nil, "Market keys to request, e.g. h2h,spreads")
	scanCmd.Flags().BoolVar(&scanBetsOnly, "bets-only", false, "Only show outcomes flagged as bets")
	scanCmd.Flags().IntVarP(&scanLimit, "limit", "n", 25, "Maximum rows to print (0 for all)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print the full report as JSON")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the pipeline once and print the ranked opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := loadConfig(ctx); err != nil {
			return err
		}
		if len(scanMarkets) > 0 {
			cfg.OddsAPI.Markets = scanMarkets
		}
		if scanBetsOnly {
			cfg.Pipeline.BetsOnly = true
		}

		sport := scanSport
		if sport == "" {
			sport = cfg.OddsAPI.Sports[0]
		}

		svc, _, err := newOddsService(ctx, nil)
		if err != nil {
			return err
		}

		report, err := svc.RunSport(ctx, sport)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if scanJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		writeSummary(out, report)
		writeRecords(out, report.Records(cfg.Pipeline.BetsOnly, scanLimit))
		writeArbitrages(out, report.Arbitrages())
		return nil
	},
}

func writeSummary(w io.Writer, report *service.Report) {
	fmt.Fprintf(w, "Sport: %s  Run: %s\n", report.SportKey, report.RunID)
	fmt.Fprintf(w, "Source: %s  Snapshot age: %s  Events: %d\n",
		report.Source, report.SnapshotAge.Round(time.Second), report.Events)
	if report.Degraded {
		msg := "feed unavailable"
		if report.FetchError != "" {
			msg = report.FetchError
		}
		fmt.Fprintf(w, "WARNING: degraded run (%s)\n", msg)
	}
	if skips := report.Skips(); len(skips) > 0 || len(report.Issues) > 0 {
		fmt.Fprintf(w, "Skipped: %d quotes, %d feed issues\n", len(skips), len(report.Issues))
	}
	fmt.Fprintln(w)
}

func writeRecords(w io.Writer, records []models.EVRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No priced outcomes.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMARKET\tOUTCOME\tBOOK\tPRICE\tAMERICAN\tFAIR\tEV\tEV_ADJ\tKELLY\tSTAKE\tDECISION")
	for i, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%+.0f\t%.4f\t%+.4f\t%+.4f\t%.4f\t%s\t%s\n",
			i+1, r.MarketID, outcomeLabel(r), r.Bookmaker, r.Price, r.AmericanOdds,
			r.FairProb, r.EV, r.EVAdj, r.KellyFraction, r.RecommendedStake.StringFixed(2),
			strings.ToUpper(string(r.Decision)))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func outcomeLabel(r models.EVRecord) string {
	if r.Point == nil {
		return r.OutcomeID
	}
	return fmt.Sprintf("%s %+g", r.OutcomeID, *r.Point)
}

func writeArbitrages(w io.Writer, arbs []comparator.MarketComparison) {
	if len(arbs) == 0 {
		return
	}

	fmt.Fprintf(w, "Arbitrage (%d):\n", len(arbs))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MARKET\tMARGIN\tOUTCOME\tBOOK\tPRICE\tSTAKE_SHARE")
	for _, a := range arbs {
		for i, o := range a.Outcomes {
			market, margin := "", ""
			if i == 0 {
				market = a.MarketID
				margin = fmt.Sprintf("%.2f%%", *a.ArbitrageMargin)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.4f\n",
				market, margin, o.OutcomeID, o.BestBookmaker, o.BestPrice, o.StakeShare)
		}
	}
	tw.Flush()
}
