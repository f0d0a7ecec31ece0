package main

import (
	"flag"
	"log"
	"os"

	"github.com/danmuck/microsync/internal/config"
)

const defaultPath = "cmd/microsyncd/config.toml"

func main() {
	output := flag.String("output", defaultPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", defaultPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	printCfg := flag.Bool("print", false, "print the effective config for -input")
	flag.Parse()

	if *printCfg {
		cfg, err := config.Load(*input)
		if err != nil {
			log.Fatal(err)
		}
		data, err := config.Render(cfg)
		if err != nil {
			log.Fatal(err)
		}
		os.Stdout.Write(data)
		return
	}

	if *validate {
		if _, err := config.Load(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s", *input)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote config template to %s", *output)
}
