package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/datamarket/internal/client/cli"
	"github.com/dmitrijs2005/datamarket/internal/client/config"
	"github.com/dmitrijs2005/datamarket/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewText(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	app, err := cli.NewApp(ctx, cfg, logger)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
