package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/mediahub/internal/mockapi"
	"github.com/dmitrijs2005/mediahub/internal/mockapi/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := mockapi.NewApp(cfg).Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
