package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/odds-edge/internal/oddsmath"
)

var (
	convertAmerican string
	convertDecimal  float64
)

func init() {
	convertCmd.Flags().StringVarP(&convertAmerican, "american", "a", "", "American odds, e.g. +150 or -200")
	convertCmd.Flags().Float64VarP(&convertDecimal, "decimal", "d", 0, "Decimal odds, e.g. 2.5")
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a price between American and decimal odds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			price oddsmath.Price
			err   error
		)
		switch {
		case convertAmerican != "":
			var a float64
			if a, err = oddsmath.ParseAmerican(convertAmerican); err == nil {
				price, err = oddsmath.PriceFromAmerican(a)
			}
		case cmd.Flags().Changed("decimal"):
			price, err = oddsmath.PriceFromDecimal(convertDecimal)
		default:
			return fmt.Errorf("one of --american or --decimal is required")
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "decimal: %.4f\namerican: %+.0f\nimplied: %.4f\n",
			price.Decimal, price.American, price.ImpliedProb)
		return nil
	},
}

var devigCmd = &cobra.Command{
	Use:   "devig <decimal> <decimal> [decimal...]",
	Short: "Remove the bookmaker margin from one market's decimal prices",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prices := make([]float64, 0, len(args))
		for _, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid decimal price %q", a)
			}
			prices = append(prices, v)
		}

		probs, err := oddsmath.Devig(prices)
		if err != nil {
			return err
		}
		overround, err := oddsmath.Overround(prices)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "overround: %.4f\n", overround)
		for i, p := range probs {
			fmt.Fprintf(out, "%.2f -> %.4f (fair %.2f)\n", prices[i], p, 1/p)
		}
		return nil
	},
}
