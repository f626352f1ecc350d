package main

// buckettable-inspect polls a running service's
// GET /debug/buckettable/snapshot endpoint (the shape pkg/table.Snapshot
// marshals to) and prints it, either once, or repeatedly in watch mode.
//
// Build-time flag: `-ldflags "-X main.version=vX.Y.Z"`.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kylelemons/godebug/pretty"
	"github.com/natefinch/atomic"
)

var version = "dev"

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}

	if opts.version {
		fmt.Println(version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	var previous map[string]any

	if opts.watch {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			previous, err = dumpOnce(ctx, opts, previous)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if _, err := dumpOnce(ctx, opts, nil); err != nil {
		fatal(err)
	}
}

// dumpOnce fetches one snapshot (retrying transient failures with
// exponential backoff), renders it, optionally persists it to disk, and
// returns it so watch mode can diff against the next poll.
func dumpOnce(ctx context.Context, opts *options, previous map[string]any) (map[string]any, error) {
	snap, err := fetchSnapshotWithRetry(ctx, opts.target)
	if err != nil {
		return previous, err
	}

	if err := render(opts, previous, snap); err != nil {
		return snap, err
	}

	if opts.saveTo != "" {
		if err := saveSnapshot(opts.saveTo, snap); err != nil {
			return snap, fmt.Errorf("save: %w", err)
		}
	}

	return snap, nil
}

func render(opts *options, previous, snap map[string]any) error {
	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	if opts.diff && previous != nil {
		diff := pretty.Compare(previous, snap)
		if diff == "" {
			fmt.Println("(no change)")
		} else {
			fmt.Println(diff)
		}
		return nil
	}
	return prettyPrint(snap)
}

// fetchSnapshotWithRetry wraps fetchSnapshot in an exponential backoff:
// a monitoring instance restarting or briefly unreachable shouldn't make a
// watch loop give up, only one poll's worth of output.
func fetchSnapshotWithRetry(ctx context.Context, base string) (map[string]any, error) {
	var snap map[string]any
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	err := backoff.Retry(func() error {
		s, err := fetchSnapshot(ctx, base)
		if err != nil {
			return err
		}
		snap = s
		return nil
	}, b)
	return snap, err
}

func fetchSnapshot(ctx context.Context, base string) (map[string]any, error) {
	url := base + "/debug/buckettable/snapshot"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	var data map[string]any
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func prettyPrint(data map[string]any) error {
	fmt.Printf("Length:    %v\n", data["Length"])
	fmt.Printf("Capacity:  %v\n", data["Capacity"])
	fmt.Printf("Load:      %.4f\n", toFloat(data["Load"]))
	fmt.Printf("Size MB:   %.2f\n", toFloat(data["Size"])/1_048_576)
	fmt.Printf("KeySize:   %v\n", data["KeySize"])
	fmt.Printf("ValueSize: %v\n", data["ValueSize"])
	if shards, ok := data["Shards"].([]any); ok {
		fmt.Printf("Shards:    %d\n", len(shards))
	}
	return nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	default:
		return 0
	}
}

// saveSnapshot writes snap to path atomically (rename-on-write via
// natefinch/atomic), so a reader never observes a half-written file even if
// the process is killed mid-poll.
func saveSnapshot(path string, snap map[string]any) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(b))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "buckettable-inspect:", err)
	os.Exit(1)
}
