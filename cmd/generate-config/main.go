package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"recall-server/internal/config"
	"recall-server/pkg/ai"
	"recall-server/pkg/deck"
)

var kind = flag.String("type", "server", "the configuration to print (server, deck or ai)")

func main() {
	flag.Parse()

	var cfg interface{}
	switch *kind {
	case "server":
		cfg = config.DefaultConfig()
	case "deck":
		cfg = deck.DefaultConfig()
	case "ai":
		cfg = ai.DefaultConfig()
	default:
		fmt.Fprintf(os.Stderr, "unknown type: %s\n", *kind)
		os.Exit(1)
	}

	if err := yaml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
		panic(err)
	}
}
