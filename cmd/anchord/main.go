package main

import (
	"log"

	"github.com/themeradar/anchor/pkg/api"
)

func main() {
	if err := api.Serve(); err != nil {
		log.Fatal(err)
	}
}
