package main

import (
	"context"

	"github.com/dmitrijs2005/photovault/internal/server"
	"github.com/dmitrijs2005/photovault/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	server.NewApp(cfg).Run(ctx)
}
