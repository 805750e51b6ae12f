package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/dattu2507/matching-engine-project/internal/market"
	"github.com/dattu2507/matching-engine-project/internal/order"
	"github.com/mum4k/termdash"
	"github.com/mum4k/termdash/cell"
	"github.com/mum4k/termdash/container"
	"github.com/mum4k/termdash/container/grid"
	"github.com/mum4k/termdash/keyboard"
	"github.com/mum4k/termdash/linestyle"
	"github.com/mum4k/termdash/terminal/tcell"
	"github.com/mum4k/termdash/terminal/terminalapi"
	"github.com/mum4k/termdash/widgets/barchart"
	"github.com/mum4k/termdash/widgets/button"
	"github.com/mum4k/termdash/widgets/linechart"
	"github.com/mum4k/termdash/widgets/text"
	"github.com/mum4k/termdash/widgets/textinput"
)

const (
	redrawInterval = 250 * time.Millisecond
	maxHistorySize = 50
	depthScale     = 1000
)

// Trader is the part of the engine's REST API the dashboard drives.
type Trader interface {
	Submit(ctx context.Context, req order.Request) (json.RawMessage, error)
	Cancel(ctx context.Context, symbol, orderID string) (json.RawMessage, error)
	RecentTrades(ctx context.Context, symbol string) ([]market.Trade, error)
	BBO(ctx context.Context, symbol string) (json.RawMessage, error)
	Depth(ctx context.Context, symbol string) (market.Depth, error)
}

type Dashboard struct {
	ctx    context.Context
	trader Trader
	board  *Board

	bboText    *text.Text
	tradesText *text.Text
	orderText  *text.Text
	cancelText *text.Text
	depthText  *text.Text
	depthChart *barchart.BarChart
	// depthValues are the bars last drawn on depthChart.
	depthValues []int
	priceChart *linechart.LineChart

	sideInput     *textinput.TextInput
	typeInput     *textinput.TextInput
	priceInput    *textinput.TextInput
	qtyInput      *textinput.TextInput
	cancelSymbol  *textinput.TextInput
	cancelOrderID *textinput.TextInput

	submitBtn *button.Button
	cancelBtn *button.Button
	reloadBtn *button.Button

	updateChan chan func(*Board)
	closeChan  chan struct{}
	closeOnce  sync.Once
	symbol     string
	mu         sync.Mutex
}

func NewDashboard(trader Trader, symbol string, maxTrades int) *Dashboard {
	return &Dashboard{
		ctx:        context.Background(),
		trader:     trader,
		symbol:     symbol,
		board:      NewBoard(maxTrades),
		updateChan: make(chan func(*Board), 100),
		closeChan:  make(chan struct{}),
	}
}

func (d *Dashboard) InitWidgets() error {
	var err error
	for _, w := range []**text.Text{&d.bboText, &d.orderText, &d.cancelText, &d.depthText} {
		if *w, err = text.New(text.WrapAtWords()); err != nil {
			return fmt.Errorf("failed to create text widget: %v", err)
		}
	}
	if d.tradesText, err = text.New(); err != nil {
		return fmt.Errorf("failed to create trades widget: %v", err)
	}

	d.depthChart, err = barchart.New(
		barchart.ShowValues(),
		barchart.BarGap(1),
	)
	if err != nil {
		return fmt.Errorf("failed to create depth chart: %v", err)
	}

	d.priceChart, err = linechart.New(
		linechart.AxesCellOpts(cell.FgColor(cell.ColorRed)),
		linechart.YLabelCellOpts(cell.FgColor(cell.ColorGreen)),
		linechart.XLabelCellOpts(cell.FgColor(cell.ColorGreen)),
	)
	if err != nil {
		return fmt.Errorf("failed to create price chart: %v", err)
	}

	if err := d.initInputs(); err != nil {
		return err
	}
	return d.initButtons()
}

func (d *Dashboard) initInputs() error {
	labelOpts := cell.FgColor(cell.ColorNumber(33))
	newInput := func(label, placeholder string, opts ...textinput.Option) (*textinput.TextInput, error) {
		opts = append([]textinput.Option{
			textinput.Label(label, labelOpts),
			textinput.PlaceHolder(placeholder),
		}, opts...)
		ti, err := textinput.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create %q input: %v", label, err)
		}
		return ti, nil
	}

	var err error
	if d.sideInput, err = newInput("Side:  ", "buy / sell"); err != nil {
		return err
	}
	if d.typeInput, err = newInput("Type:  ", "limit / market / ioc / fok"); err != nil {
		return err
	}
	if d.priceInput, err = newInput("Price: ", "empty for market"); err != nil {
		return err
	}
	// Enter in the last field submits, like a form.
	if d.qtyInput, err = newInput("Qty:   ", "quantity", textinput.OnSubmit(func(qty string) error {
		f := d.readOrderForm()
		f.Qty = qty
		go d.submitOrder(d.ctx, f)
		return nil
	})); err != nil {
		return err
	}
	if d.cancelSymbol, err = newInput("Symbol:   ", "symbol", textinput.DefaultText(d.symbol)); err != nil {
		return err
	}
	if d.cancelOrderID, err = newInput("Order ID: ", "order id", textinput.OnSubmit(func(orderID string) error {
		go d.cancelOrder(d.ctx, d.cancelSymbol.Read(), orderID)
		return nil
	})); err != nil {
		return err
	}
	return nil
}

func (d *Dashboard) initButtons() error {
	var err error
	d.submitBtn, err = button.New("Submit", func() error {
		go d.submitOrder(d.ctx, d.readOrderForm())
		return nil
	},
		button.WidthFor("Submit"),
		button.Height(1),
		button.FillColor(cell.ColorNumber(28)),
	)
	if err != nil {
		return fmt.Errorf("failed to create Submit button: %v", err)
	}

	d.cancelBtn, err = button.New("Cancel", func() error {
		go d.cancelOrder(d.ctx, d.cancelSymbol.Read(), d.cancelOrderID.Read())
		return nil
	},
		button.WidthFor("Cancel"),
		button.Height(1),
		button.FillColor(cell.ColorNumber(196)),
	)
	if err != nil {
		return fmt.Errorf("failed to create Cancel button: %v", err)
	}

	d.reloadBtn, err = button.New("Reload trades", func() error {
		go d.ReloadTrades(d.ctx)
		return nil
	},
		button.WidthFor("Reload trades"),
		button.Height(1),
		button.FillColor(cell.ColorNumber(220)),
	)
	if err != nil {
		return fmt.Errorf("failed to create Reload button: %v", err)
	}
	return nil
}

func (d *Dashboard) readOrderForm() order.Form {
	return order.Form{
		Side:  d.sideInput.Read(),
		Type:  d.typeInput.Read(),
		Price: d.priceInput.Read(),
		Qty:   d.qtyInput.Read(),
	}
}

// HandleBBO and HandleTrade make the dashboard a feed.Handler.
func (d *Dashboard) HandleBBO(_ string, bbo json.RawMessage) {
	d.apply(func(b *Board) { b.SetBBO(bbo) })
}

func (d *Dashboard) HandleTrade(t market.Trade) {
	d.apply(func(b *Board) { b.PrependTrade(t) })
}

func (d *Dashboard) submitOrder(ctx context.Context, f order.Form) {
	resp, err := d.trader.Submit(ctx, f.Request(d.symbol))
	if err != nil {
		log.Printf("submit order failed: %v", err)
		return
	}
	log.Printf("order response: %s", resp)
	d.apply(func(b *Board) { b.SetOrderResponse(resp) })
}

func (d *Dashboard) cancelOrder(ctx context.Context, symbol, orderID string) {
	resp, err := d.trader.Cancel(ctx, symbol, orderID)
	if err != nil {
		log.Printf("cancel order %s/%s failed: %v", symbol, orderID, err)
		d.apply(func(b *Board) { b.SetCancelError() })
		return
	}
	d.apply(func(b *Board) { b.SetCancelResponse(resp) })
}

// ReloadTrades replaces the trade list with the engine's recent trades.
func (d *Dashboard) ReloadTrades(ctx context.Context) {
	trades, err := d.trader.RecentTrades(ctx, d.symbol)
	if err != nil {
		log.Printf("load trades failed: %v", err)
		return
	}
	d.apply(func(b *Board) { b.ReplaceTrades(trades) })
}

// LoadBBO seeds the BBO panel before the feed's first update.
func (d *Dashboard) LoadBBO(ctx context.Context) {
	bbo, err := d.trader.BBO(ctx, d.symbol)
	if err != nil {
		log.Printf("load bbo failed: %v", err)
		return
	}
	d.apply(func(b *Board) { b.SetBBO(bbo) })
}

func (d *Dashboard) refreshDepth(ctx context.Context) {
	depth, err := d.trader.Depth(ctx, d.symbol)
	if err != nil {
		log.Printf("load depth failed: %v", err)
		return
	}
	d.apply(func(b *Board) { b.SetDepth(depth) })
}

// RunDepthPoller refreshes the depth panel every interval until ctx is
// done. A non-positive interval disables polling.
func (d *Dashboard) RunDepthPoller(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	d.refreshDepth(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.refreshDepth(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// apply queues fn for the update listener. It drops fn once the dashboard
// is closed.
func (d *Dashboard) apply(fn func(*Board)) {
	select {
	case d.updateChan <- fn:
	case <-d.closeChan:
	}
}

func (d *Dashboard) Close() {
	d.closeOnce.Do(func() { close(d.closeChan) })
}

func (d *Dashboard) processUpdate(fn func(*Board)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn(d.board)
	d.redraw()
}

func (d *Dashboard) redraw() {
	if d.bboText == nil {
		return
	}

	d.bboText.Reset()
	d.bboText.Write(d.board.BBO())

	d.tradesText.Reset()
	for _, t := range d.board.Trades() {
		side, rest := TradeLine(t)
		d.tradesText.Write(side, text.WriteCellOpts(cell.Bold(), cell.FgColor(sideColor(side))))
		d.tradesText.Write(rest + "\n")
	}

	d.orderText.Reset()
	d.orderText.Write(d.board.OrderResponse())

	d.cancelText.Reset()
	d.cancelText.Write(d.board.CancelResponse())

	d.depthText.Reset()
	d.depthText.Write(d.board.DepthSummary())
	d.updateDepthChart()

	if prices := d.board.PriceHistory(); len(prices) > 0 {
		d.priceChart.Series("price", prices, linechart.SeriesCellOpts(cell.FgColor(cell.ColorCyan)))
	}
}

// updateDepthChart draws bids then asks, best level innermost. An empty book
// clears the chart.
func (d *Dashboard) updateDepthChart() {
	values, labels, colors, maxValue := depthBars(d.board.Depth())
	if err := d.depthChart.Values(values, maxValue, barchart.Labels(labels), barchart.BarColors(colors)); err != nil {
		log.Printf("depth chart: %v", err)
		return
	}
	d.depthValues = values
}

// depthBars converts the book into bar chart values, qty scaled by
// depthScale. maxValue is at least 1.
func depthBars(depth market.Depth) (values []int, labels []string, colors []cell.Color, maxValue int) {
	n := len(depth.Bids) + len(depth.Asks)
	values = make([]int, 0, n)
	labels = make([]string, 0, n)
	colors = make([]cell.Color, 0, n)
	maxValue = 1
	add := func(l market.Level, color cell.Color) {
		v := int(math.Round(l.Qty * depthScale))
		if v < 0 {
			v = 0
		}
		if v > maxValue {
			maxValue = v
		}
		values = append(values, v)
		labels = append(labels, formatNumber(l.Price))
		colors = append(colors, color)
	}
	for i := len(depth.Bids) - 1; i >= 0; i-- {
		add(depth.Bids[i], cell.ColorGreen)
	}
	for _, l := range depth.Asks {
		add(l, cell.ColorRed)
	}
	return values, labels, colors, maxValue
}

func sideColor(side string) cell.Color {
	switch side {
	case "buy":
		return cell.ColorGreen
	case "sell":
		return cell.ColorRed
	}
	return cell.ColorDefault
}

func CreateGridLayout(d *Dashboard) ([]container.Option, error) {
	builder := grid.New()

	builder.Add(
		grid.RowHeightPerc(45,
			grid.ColWidthPerc(25,
				grid.Widget(d.bboText,
					container.Border(linestyle.Light),
					container.BorderTitle(fmt.Sprintf(" %s BBO ", d.symbol)),
				),
			),
			grid.ColWidthPerc(35,
				grid.Widget(d.tradesText,
					container.Border(linestyle.Light),
					container.BorderTitle(" Trades "),
				),
			),
			grid.ColWidthPerc(40,
				grid.Widget(d.priceChart,
					container.Border(linestyle.Light),
					container.BorderTitle(" Trade Price History "),
				),
			),
		),
		grid.RowHeightPerc(25,
			grid.ColWidthPerc(60,
				grid.RowHeightPerc(75,
					grid.Widget(d.depthChart,
						container.Border(linestyle.Light),
						container.BorderTitle(" Depth "),
					),
				),
				grid.RowHeightPerc(25,
					grid.Widget(d.depthText),
				),
			),
			grid.ColWidthPerc(40,
				grid.Widget(d.orderText,
					container.Border(linestyle.Light),
					container.BorderTitle(" Order Response "),
				),
			),
		),
		grid.RowHeightPerc(30,
			grid.ColWidthPerc(40,
				createFormRows(
					[]*textinput.TextInput{d.sideInput, d.typeInput, d.priceInput, d.qtyInput},
					d.submitBtn, d.reloadBtn,
				)...,
			),
			grid.ColWidthPerc(30,
				createFormRows(
					[]*textinput.TextInput{d.cancelSymbol, d.cancelOrderID},
					d.cancelBtn,
				)...,
			),
			grid.ColWidthPerc(30,
				grid.Widget(d.cancelText,
					container.Border(linestyle.Light),
					container.BorderTitle(" Cancel Response "),
				),
			),
		),
	)

	gridOpts, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return gridOpts, nil
}

// createFormRows stacks inputs above a row of buttons.
func createFormRows(inputs []*textinput.TextInput, buttons ...*button.Button) []grid.Element {
	rowPerc := 99 / (len(inputs) + 1)

	var elements []grid.Element
	for _, in := range inputs {
		elements = append(elements, grid.RowHeightPerc(rowPerc, grid.Widget(in)))
	}

	var cols []grid.Element
	for _, b := range buttons {
		cols = append(cols, grid.ColWidthPerc(99/len(buttons), grid.Widget(b)))
	}
	elements = append(elements, grid.RowHeightPerc(rowPerc, cols...))
	return elements
}

// StartUpdateListener applies queued updates until ctx is done. Button
// actions started afterwards run under ctx.
func (d *Dashboard) StartUpdateListener(ctx context.Context) {
	d.ctx = ctx
	go func() {
		for {
			select {
			case <-ctx.Done():
				d.Close()
				return
			case fn := <-d.updateChan:
				d.processUpdate(fn)
			}
		}
	}()
}

// RunDashboard blocks until ctx is done or the user presses Esc or Ctrl+C.
func RunDashboard(ctx context.Context, d *Dashboard) error {
	t, err := tcell.New(tcell.ColorMode(terminalapi.ColorMode256))
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	defer t.Close()

	gridOpts, err := CreateGridLayout(d)
	if err != nil {
		return fmt.Errorf("failed to build grid layout: %v", err)
	}

	c, err := container.New(t, gridOpts...)
	if err != nil {
		return fmt.Errorf("failed to create root container: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	quit := func(k *terminalapi.Keyboard) {
		if k.Key == keyboard.KeyEsc || k.Key == keyboard.KeyCtrlC {
			cancel()
		}
	}

	return termdash.Run(ctx, t, c,
		termdash.RedrawInterval(redrawInterval),
		termdash.KeyboardSubscriber(quit),
	)
}
