package main

import (
	"flag"
	"log"
	"net/http"

	"shatranj/internal/config"
	"shatranj/internal/transport"
	"shatranj/internal/ttable"
)

func main() {
	cfgPath := flag.String("config", "", "path to a TOML config file")
	addr := flag.String("addr", "", "address to listen on (overrides config)")
	ttMB := flag.Int("tt-mb", 0, "transposition table size in MiB (overrides config)")
	maxDepth := flag.Int("max-depth", 0, "maximum iterative-deepening depth (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *ttMB != 0 {
		cfg.TTSizeMB = *ttMB
	}
	if *maxDepth != 0 {
		cfg.MaxDepth = *maxDepth
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	tt := ttable.New(cfg.TTSizeMB * 1024 * 1024)
	srv := transport.New(tt, cfg.MaxDepth)

	http.Handle("/", srv)
	log.Printf("Listening on: %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.Fatal(err)
	}
}
