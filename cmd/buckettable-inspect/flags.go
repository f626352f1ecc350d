package main

// flags.go defines the command-line and config-file surface for
// buckettable-inspect. Flags are parsed with pflag; an optional config file
// (JSON-with-comments, via hujson) can supply target, interval, json, save
// and diff so the tool can be driven from a checked-in profile as well as
// ad hoc flags — flags always win over the file when both are set.

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

type options struct {
	target      string
	watch       bool
	interval    time.Duration
	json        bool
	saveTo      string
	diff        bool
	configFile  string
	version     bool
}

type fileConfig struct {
	Target   string `json:"target"`
	Interval string `json:"interval"`
	JSON     bool   `json:"json"`
	SaveTo   string `json:"saveTo"`
	Diff     bool   `json:"diff"`
}

func parseFlags(args []string) (*options, error) {
	fs := pflag.NewFlagSet("buckettable-inspect", pflag.ContinueOnError)

	opts := &options{}
	fs.StringVar(&opts.target, "target", "http://localhost:6060", "base URL of the instance exposing /debug/buckettable/snapshot")
	fs.BoolVar(&opts.watch, "watch", false, "poll the snapshot endpoint on --interval instead of printing once")
	fs.DurationVar(&opts.interval, "interval", 2*time.Second, "polling interval in watch mode")
	fs.BoolVar(&opts.json, "json", false, "print the raw JSON snapshot instead of a formatted summary")
	fs.StringVar(&opts.saveTo, "save", "", "also write each snapshot atomically to this file (JSON)")
	fs.BoolVar(&opts.diff, "diff", false, "in watch mode, print a structural diff against the previous snapshot instead of the full summary")
	fs.StringVar(&opts.configFile, "config", "", "hujson (JSON-with-comments) config file providing defaults for --target, --interval, --json, --save and --diff")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.configFile != "" {
		if err := applyConfigFile(opts, fs, opts.configFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	return opts, nil
}

// applyConfigFile fills in any field the user did not pass explicitly on the
// command line from the hujson config file. fs.Changed tells us which flags
// were actually set, so file values never clobber an explicit flag.
func applyConfigFile(opts *options, fs *pflag.FlagSet, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(std, &fc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if !fs.Changed("target") && fc.Target != "" {
		opts.target = fc.Target
	}
	if !fs.Changed("interval") && fc.Interval != "" {
		d, err := time.ParseDuration(fc.Interval)
		if err != nil {
			return fmt.Errorf("interval: %w", err)
		}
		opts.interval = d
	}
	if !fs.Changed("json") && fc.JSON {
		opts.json = fc.JSON
	}
	if !fs.Changed("save") && fc.SaveTo != "" {
		opts.saveTo = fc.SaveTo
	}
	if !fs.Changed("diff") && fc.Diff {
		opts.diff = fc.Diff
	}
	return nil
}
