package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newBuyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buy TICKER PRICE [QTY]",
		Short: "Open QTY positions of TICKER at PRICE (default 1)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := strings.ToUpper(args[0])
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("price %q: %w", args[1], err)
			}
			qty := 1
			if len(args) == 3 {
				if qty, err = strconv.Atoi(args[2]); err != nil {
					return fmt.Errorf("quantity %q: %w", args[2], err)
				}
			}

			last, err := a.ledger.Buy(cmd.Context(), ticker, price, qty)
			if err != nil {
				return err
			}
			a.console.Bought(last, qty, a.ledger.Balance())
			return nil
		},
	}
}

func newSellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sell TICKER QTY",
		Short: "Close QTY positions of TICKER at their last refreshed price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := strings.ToUpper(args[0])
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], err)
			}

			remaining, err := a.ledger.Sell(cmd.Context(), ticker, qty)
			if err != nil {
				return err
			}
			a.console.Sold(ticker, remaining, a.ledger.Balance())
			return nil
		},
	}
}

func newPositionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List open positions and the cash balance",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			snap := a.ledger.Snapshot()
			a.console.Positions(snap.Positions, snap.Balance)
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [TICKER]",
		Short: "Summarize one ticker or the whole portfolio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				s, err := a.ledger.StockSummary(strings.ToUpper(args[0]))
				if err != nil {
					return err
				}
				a.console.StockSummary(s)
				return nil
			}

			s, err := a.ledger.PortfolioSummary()
			if err != nil {
				return err
			}
			a.console.PortfolioSummary(s, a.ledger.Balance())
			return nil
		},
	}
}
