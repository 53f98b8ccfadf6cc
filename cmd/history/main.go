// Package main provides a CLI for inspecting and pruning connection history.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/config"
	"github.com/cory-johannsen/haxroom/internal/history"
	"github.com/cory-johannsen/haxroom/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/room.yaml", "path to configuration file")
	action := flag.String("action", "keys", "one of: keys, get, remove, clear")
	ip := flag.String("ip", "", "IP address for get and remove")
	flag.Parse()

	if (*action == "get" || *action == "remove") && *ip == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, release, err := storage.OpenHistory(ctx, cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("opening history: %v", err)
	}
	defer release()

	switch *action {
	case "keys":
		keys, err := store.Keys(ctx)
		if err != nil {
			log.Fatalf("listing keys: %v", err)
		}
		for _, k := range keys {
			fmt.Fprintln(os.Stdout, k)
		}
		fmt.Fprintf(os.Stderr, "%d addresses [%s]\n", len(keys), time.Since(start))
	case "get":
		rec, err := store.Get(ctx, *ip)
		if errors.Is(err, history.ErrNotFound) {
			log.Fatalf("no history for %s", *ip)
		}
		if err != nil {
			log.Fatalf("reading %s: %v", *ip, err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			log.Fatalf("encoding record: %v", err)
		}
	case "remove":
		if err := store.Remove(ctx, *ip); err != nil {
			log.Fatalf("removing %s: %v", *ip, err)
		}
		fmt.Fprintf(os.Stdout, "removed %s [%s]\n", *ip, time.Since(start))
	case "clear":
		if err := store.Clear(ctx); err != nil {
			log.Fatalf("clearing history: %v", err)
		}
		fmt.Fprintf(os.Stdout, "cleared history [%s]\n", time.Since(start))
	default:
		log.Fatalf("invalid action %q: must be keys, get, remove or clear", *action)
	}
}
