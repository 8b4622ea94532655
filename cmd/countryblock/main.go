package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caasmo/countryblock"
)

func main() {
	configPath := flag.String("config", "countryblock.toml", "path to the TOML configuration file")
	flag.Parse()

	_, srv, err := countryblock.New(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srv.Run()
}
