package notify

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/stockbot/internal/application/acquisition"
	"github.com/alejandrodnm/stockbot/internal/application/engine"
	"github.com/alejandrodnm/stockbot/internal/application/reconcile"
	"github.com/alejandrodnm/stockbot/internal/domain"
)

// Console imprime el estado del ledger y los resultados de cada operación.
type Console struct {
	out     io.Writer
	compact bool
}

// NewConsoleWriter crea un notificador que escribe en w. compact usa una
// línea por elemento en vez de tablas.
func NewConsoleWriter(w io.Writer, compact bool) *Console {
	return &Console{out: w, compact: compact}
}

// Positions imprime las posiciones abiertas y el balance.
func (c *Console) Positions(positions []domain.Position, balance float64) {
	if len(positions) == 0 {
		fmt.Fprintf(c.out, "No open positions. Balance: %s\n", money(balance))
		return
	}

	if c.compact {
		for _, p := range positions {
			fmt.Fprintf(c.out, "#%d %s buy %s cur %s %s\n",
				p.ID, p.Ticker, money(p.PricePurchased), money(p.CurrentPrice), pct(p.PercentChange()))
		}
	} else {
		tbl := tablewriter.NewWriter(c.out)
		tbl.Header("ID", "Ticker", "Bought", "Buy$", "Refreshed", "Cur$", "Change", "Change%")
		for _, p := range positions {
			tbl.Append(
				fmt.Sprintf("%d", p.ID),
				p.Ticker,
				p.DatePurchased.Format("2006-01-02"),
				money(p.PricePurchased),
				p.DateLastRefreshed.Format("2006-01-02 15:04"),
				money(p.CurrentPrice),
				money(p.ValueIncrease),
				pct(p.PercentChange()),
			)
		}
		tbl.Render()
	}
	fmt.Fprintf(c.out, "Positions: %d  Balance: %s\n", len(positions), money(balance))
}

// Bought imprime el resultado de una compra manual.
func (c *Console) Bought(last domain.Position, quantity int, balance float64) {
	fmt.Fprintf(c.out, "Bought %d x %s @ %s (last id #%d). Balance: %s\n",
		quantity, last.Ticker, money(last.PricePurchased), last.ID, money(balance))
}

// Sold imprime el resultado de una venta y lo que queda del ticker.
func (c *Console) Sold(ticker string, remaining []domain.Position, balance float64) {
	fmt.Fprintf(c.out, "Sold %s. Still holding %d rows of it. Balance: %s\n",
		ticker, domain.CountTicker(remaining, ticker), money(balance))
}

// StockSummary imprime los agregados de un ticker.
func (c *Console) StockSummary(s domain.StockSummary) {
	if c.compact {
		fmt.Fprintf(c.out, "%s qty %d paid %s owned %s %s (%s)\n",
			s.Ticker, s.TotalQuantityOwned, money(s.TotalValuePurchased),
			money(s.TotalValueOwned), money(s.TotalValueIncrease), pct(s.TotalValueIncreasePct))
		return
	}
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Ticker", "Qty bought", "Paid$", "Qty owned", "Owned$", "Increase$", "Increase%")
	tbl.Append(
		s.Ticker,
		fmt.Sprintf("%d", s.TotalQuantityPurchased),
		money(s.TotalValuePurchased),
		fmt.Sprintf("%d", s.TotalQuantityOwned),
		money(s.TotalValueOwned),
		money(s.TotalValueIncrease),
		pct(s.TotalValueIncreasePct),
	)
	tbl.Render()
}

// PortfolioSummary imprime mejor/peor posición y los totales.
func (c *Console) PortfolioSummary(s domain.PortfolioSummary, balance float64) {
	fmt.Fprintf(c.out, "\n  --- PORTFOLIO (%d positions) ---\n", s.Positions)
	c.performance("Best", s.Best)
	c.performance("Worst", s.Worst)
	fmt.Fprintf(c.out, "  Total value owned:     %s\n", money(s.TotalValueOwned))
	fmt.Fprintf(c.out, "  Total value paid:      %s\n", money(s.TotalValuePaid))
	fmt.Fprintf(c.out, "  Total change:          %s (%s)\n", money(s.TotalChange), pct(s.TotalPercentChange))
	fmt.Fprintf(c.out, "  Cash balance:          %s\n", money(balance))
	fmt.Fprintln(c.out)
}

func (c *Console) performance(label string, p domain.PositionPerformance) {
	fmt.Fprintf(c.out, "  %-6s #%d %-6s buy %s cur %s  %s (%s)\n",
		label+":", p.ID, p.Ticker, money(p.BuyPrice), money(p.CurrentPrice), money(p.Change), pct(p.PercentChange))
}

// Reconcile imprime los precios usados y las tickers que fallaron.
func (c *Console) Reconcile(r *reconcile.Report) {
	tickers := make([]string, 0, len(r.Prices)+len(r.Failed))
	for t := range r.Prices {
		tickers = append(tickers, t)
	}
	for t := range r.Failed {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	if len(tickers) > 0 {
		tbl := tablewriter.NewWriter(c.out)
		tbl.Header("Ticker", "Price", "Status")
		for _, t := range tickers {
			if err, failed := r.Failed[t]; failed {
				tbl.Append(t, "-", "FAILED: "+err.Error())
				continue
			}
			tbl.Append(t, money(r.Prices[t]), "OK")
		}
		tbl.Render()
	}
	fmt.Fprintf(c.out, "[%s] reconciled %d positions. Balance: %s (%s)\n",
		r.At.Format("15:04:05"), len(r.Positions), money(r.BalanceAfter), signedMoney(r.BalanceDelta()))
}

// Acquisition imprime compras y tickers saltados de una ejecución.
func (c *Console) Acquisition(res *acquisition.Result) {
	fmt.Fprintf(c.out, "Run %s: %d ranked, %d selected\n", res.RunID, len(res.Ranked), len(res.Selected))

	if len(res.Bought) > 0 {
		tbl := tablewriter.NewWriter(c.out)
		tbl.Header("Ticker", "Score", "Price", "Qty", "Owned", "Paid$", "Owned$", "Increase%")
		for _, b := range res.Bought {
			tbl.Append(
				b.Ticker,
				fmt.Sprintf("%.4f", b.Score),
				money(b.Price),
				fmt.Sprintf("%d", b.Quantity),
				fmt.Sprintf("%d", b.Summary.TotalQuantityOwned),
				money(b.Summary.TotalValuePurchased),
				money(b.Summary.TotalValueOwned),
				pct(b.Summary.TotalValueIncreasePct),
			)
		}
		tbl.Render()
	} else {
		fmt.Fprintln(c.out, "Nothing bought.")
	}

	for _, s := range res.Skipped {
		fmt.Fprintf(c.out, "  skipped %s (score %.4f): %v\n", s.Ticker, s.Score, s.Err)
	}
}

// Ranking imprime el ranking completo sin comprar.
func (c *Console) Ranking(ranked []acquisition.Ranked, topN int) {
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("#", "Ticker", "Score", "Pick")
	for i, r := range ranked {
		pick := ""
		if i < topN {
			pick = "*"
		}
		tbl.Append(fmt.Sprintf("%d", i+1), r.Ticker, fmt.Sprintf("%.4f", r.Score), pick)
	}
	tbl.Render()
}

// Quotes imprime el precio actual y el cambio del día de la watchlist.
func (c *Console) Quotes(quotes []domain.Quote, failed map[string]error) {
	if len(quotes) > 0 {
		tbl := tablewriter.NewWriter(c.out)
		tbl.Header("Ticker", "Price", "Prev close", "Today%")
		for _, q := range quotes {
			prev := "-"
			if q.PreviousClose > 0 {
				prev = money(q.PreviousClose)
			}
			tbl.Append(q.Ticker, money(q.Price), prev, pct(q.TodayChange))
		}
		tbl.Render()
	}
	failedTickers := make([]string, 0, len(failed))
	for t := range failed {
		failedTickers = append(failedTickers, t)
	}
	sort.Strings(failedTickers)
	for _, t := range failedTickers {
		fmt.Fprintf(c.out, "  %s unavailable: %v\n", t, failed[t])
	}
}

// Reconciliations imprime el historial de reconciliaciones.
func (c *Console) Reconciliations(entries []domain.Reconciliation) {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No reconciliations recorded yet.")
		return
	}
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("When", "Tickers", "Pos", "Owned$", "Paid$", "Balance$")
	for _, e := range entries {
		tbl.Append(
			e.At.Local().Format("2006-01-02 15:04"),
			engine.TruncateStr(strings.Join(e.Tickers, ","), 40),
			fmt.Sprintf("%d", e.Positions),
			money(e.ValueOwned),
			money(e.ValuePaid),
			money(e.Balance),
		)
	}
	tbl.Render()
}

// Tick imprime una línea por ejecución programada.
func (c *Console) Tick(at time.Time, err error) {
	if err != nil {
		fmt.Fprintf(c.out, "[%s] reconcile failed: %v\n", at.Format("15:04:05"), err)
		return
	}
	fmt.Fprintf(c.out, "[%s] reconcile ok\n", at.Format("15:04:05"))
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func signedMoney(v float64) string {
	if v >= 0 {
		return "+" + money(v)
	}
	return money(v)
}

func pct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
