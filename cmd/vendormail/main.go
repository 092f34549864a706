package main

import (
	"log"

	"github.com/opsdesk/vendormail/internal/console/config"
	"github.com/opsdesk/vendormail/internal/console/ui"
)

func main() {
	if err := ui.Run(config.Load()); err != nil {
		log.Fatalf("%v", err)
	}
}
