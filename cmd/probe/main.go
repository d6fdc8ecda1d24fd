// Command probe fetches one station feed, runs the parse and derive chain,
// and prints the result as JSON. Useful for checking upstream availability
// and eyeballing derived metrics without starting the server.
//
// Usage:
//
//	go run ./cmd/probe -station 46266 -hours 24
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/swell-api/internal/domain"
	"github.com/couchcryptid/swell-api/internal/ndbc"
)

func main() {
	station := flag.String("station", "46266", "NDBC station id")
	baseURL := flag.String("base-url", "", "feed base URL (default: public NDBC)")
	hours := flag.Int("hours", 24, "history window to summarize")
	timeout := flag.Duration("timeout", 15*time.Second, "fetch timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := ndbc.NewClient(*baseURL, logger)

	text, err := client.Fetch(context.Background(), *station, *timeout)
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			fmt.Fprintf(os.Stderr, "fetch failed (%s): %v\n", fe.Kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		}
		os.Exit(1)
	}

	obs, err := ndbc.Conditions(text, *station)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(obs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	history := ndbc.History(text, *station)
	cutoff := time.Now().UTC().Add(-time.Duration(*hours) * time.Hour)
	var windowed int
	for _, row := range history {
		if !row.Timestamp.Before(cutoff) {
			windowed++
		}
	}
	fmt.Fprintf(os.Stderr, "history: %d rows total, %d within %dh\n", len(history), windowed, *hours)
}
