package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/wallet"
)

func main() {

	cfg := wallet.LoadConfig()
	logger := logging.NewText(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agent := wallet.NewAgent(cfg.Seed, cfg.Accounts, cfg.AutoApprove, logger)
	if cfg.Preauthorized {
		agent.Authorize()
	}

	fmt.Fprintf(os.Stderr, "wallet agent on ws://%s/rpc/v0\n", cfg.Addr)
	if err := wallet.Serve(ctx, cfg.Addr, agent, logger); err != nil {
		log.Fatalf("%v", err)
	}

}
