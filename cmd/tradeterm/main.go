package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/dattu2507/matching-engine-project/internal/config"
	"github.com/dattu2507/matching-engine-project/internal/feed"
	"github.com/dattu2507/matching-engine-project/internal/order"
	"github.com/dattu2507/matching-engine-project/internal/ui"
	"github.com/oklog/run"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tradeterm: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the dashboard, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tradeterm: open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	if err := runTerminal(cfg); err != nil {
		log.Printf("exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "tradeterm: %v\n", err)
		os.Exit(1)
	}
	log.Println("Program exited gracefully.")
}

func runTerminal(cfg config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := order.NewClient(cfg.APIURL)

	ad := ui.NewDashboard(client, cfg.Symbol, cfg.MaxTrades)
	if err := ad.InitWidgets(); err != nil {
		return fmt.Errorf("failed to initialize widgets: %w", err)
	}
	ad.StartUpdateListener(ctx)
	go func() {
		ad.LoadBBO(ctx)
		ad.ReloadTrades(ctx)
	}()

	wsFeed := feed.New(cfg.WSURL, ad, feed.WithHandshakeTimeout(cfg.HandshakeTimeout))

	var g run.Group

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	// The dashboard is the only actor whose exit ends the program normally.
	g.Add(func() error {
		return ui.RunDashboard(ctx, ad)
	}, func(error) {
		cancel()
	})

	// A dead feed leaves the order forms usable, as a page would.
	g.Add(func() error {
		if err := wsFeed.Run(ctx); err != nil {
			log.Printf("feed stopped: %v", err)
		}
		<-ctx.Done()
		return nil
	}, func(error) {
		cancel()
	})

	g.Add(func() error {
		return ad.RunDepthPoller(ctx, cfg.DepthInterval)
	}, func(error) {
		cancel()
	})

	err := g.Run()
	ad.Close()

	var sig run.SignalError
	if errors.As(err, &sig) {
		log.Printf("Shutting down gracefully (%v)...", sig.Signal)
		return nil
	}
	return err
}
