package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/polyshadow/engine/internal/store"
)

// LiveTradesView displays a scrolling feed of incoming trades.
type LiveTradesView struct {
	table   *tview.Table
	trades  []store.TradeEvent
	maxRows int
}

var liveTradeHeaders = []string{"Time", "Market", "Bet", "Odds", "Size", "Wallet"}

// NewLiveTradesView creates a live trades view.
func NewLiveTradesView() *LiveTradesView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Live Trades ").SetBorder(true)

	v := &LiveTradesView{
		table:   table,
		trades:  make([]store.TradeEvent, 0, 100),
		maxRows: 100,
	}
	v.updateTable()
	return v
}

// Widget returns the tview primitive.
func (v *LiveTradesView) Widget() tview.Primitive {
	return v.table
}

// AddTrade prepends a trade to the view.
func (v *LiveTradesView) AddTrade(trade store.TradeEvent) {
	v.trades = append([]store.TradeEvent{trade}, v.trades...)
	if len(v.trades) > v.maxRows {
		v.trades = v.trades[:v.maxRows]
	}
	v.updateTable()
}

// updateTable redraws the table from the retained trades.
func (v *LiveTradesView) updateTable() {
	v.table.Clear()

	for col, header := range liveTradeHeaders {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		v.table.SetCell(0, col, cell)
	}

	for i, trade := range v.trades {
		row := i + 1

		question := trade.MarketQuestion
		if question == "" {
			question = trade.MarketID
		}
		if len(question) > 32 {
			question = question[:32] + "..."
		}

		wallet := truncateAddress(trade.Wallet)
		if wallet == "" {
			wallet = "unknown"
		}

		cells := []string{
			trade.Timestamp.Format("15:04:05"),
			question,
			trade.Outcome,
			fmt.Sprintf("%.0f%%", trade.Price*100),
			fmt.Sprintf("$%.0f", trade.SizeUSD),
			wallet,
		}

		for col, text := range cells {
			cell := tview.NewTableCell(text).
				SetAlign(tview.AlignLeft)
			v.table.SetCell(row, col, cell)
		}
	}

	v.table.SetTitle(fmt.Sprintf(" Live Trades (%d) ", len(v.trades)))
}
