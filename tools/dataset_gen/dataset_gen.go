package main

// dataset_gen.go is a tiny helper utility to generate deterministic key
// datasets for standalone benchmarking of the table (outside `go test`).
// It emits newline-separated uint64 numbers which can later be fed to
// external load-testers (bench/bench_test.go builds its own in-memory
// dataset and does not read these files).
//
// Usage:
//   go run ./tools/dataset_gen -n 1000000 -dist=zipf -seed=42 -out keys.txt
//   go run ./tools/dataset_gen -profile=heavy-zipf.yaml -out keys.txt
//
// Flags:
//   -n        number of keys to generate (default 1e6)
//   -dist     distribution: "uniform" or "zipf" (default uniform)
//   -zipfs    Zipf s parameter (>1)  (default 1.2)
//   -zipfv    Zipf v parameter (>=1) (default 1.0)
//   -seed     RNG seed (default current time)
//   -out      output file (default stdout)
//   -profile  optional YAML workload profile supplying defaults for the
//             above; explicit flags still win over the profile's values.

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// workloadProfile mirrors the flag set so a profile file and the command
// line can share defaulting logic.
type workloadProfile struct {
	N     int     `yaml:"n"`
	Dist  string  `yaml:"dist"`
	ZipfS float64 `yaml:"zipfS"`
	ZipfV float64 `yaml:"zipfV"`
	Seed  int64   `yaml:"seed"`
}

func loadProfile(path string) (workloadProfile, error) {
	var p workloadProfile
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	err = yaml.Unmarshal(raw, &p)
	return p, err
}

// applyProfileDefaults fills flag values from prof, skipping any flag the
// user explicitly set on the command line (fs.Visit only reports those).
func applyProfileDefaults(fs *flag.FlagSet, prof workloadProfile, n *int, dist *string, zipfS, zipfV *float64, seed *int64) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["n"] && prof.N != 0 {
		*n = prof.N
	}
	if !set["dist"] && prof.Dist != "" {
		*dist = prof.Dist
	}
	if !set["zipfs"] && prof.ZipfS != 0 {
		*zipfS = prof.ZipfS
	}
	if !set["zipfv"] && prof.ZipfV != 0 {
		*zipfV = prof.ZipfV
	}
	if !set["seed"] && prof.Seed != 0 {
		*seed = prof.Seed
	}
}

func main() {
    fs := flag.NewFlagSet("dataset_gen", flag.ExitOnError)
    var (
        n        = fs.Int("n", 1_000_000, "number of keys to generate")
        dist     = fs.String("dist", "uniform", "distribution: uniform or zipf")
        zipfS    = fs.Float64("zipfs", 1.2, "zipf s parameter (>1)")
        zipfV    = fs.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
        seedVal  = fs.Int64("seed", time.Now().UnixNano(), "PRNG seed")
        outPath  = fs.String("out", "", "output file (default stdout)")
        profPath = fs.String("profile", "", "YAML workload profile supplying defaults")
    )
    fs.Parse(os.Args[1:])

    if *profPath != "" {
        prof, err := loadProfile(*profPath)
        if err != nil {
            fmt.Fprintln(os.Stderr, "cannot load profile:", err)
            os.Exit(1)
        }
        applyProfileDefaults(fs, prof, n, dist, zipfS, zipfV, seedVal)
    }

    rnd := rand.New(rand.NewSource(*seedVal))

    var gen func() uint64
    switch *dist {
    case "uniform":
        gen = rnd.Uint64
    case "zipf":
        if *zipfS <= 1.0 || *zipfV < 1 {
            fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
            os.Exit(1)
        }
        z := rand.NewZipf(rnd, *zipfS, *zipfV, ^uint64(0))
        gen = z.Uint64
    default:
        fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
        os.Exit(1)
    }

    var out *os.File
    var err error
    if *outPath == "" {
        out = os.Stdout
    } else {
        out, err = os.Create(*outPath)
        if err != nil {
            fmt.Fprintln(os.Stderr, "cannot create file:", err)
            os.Exit(1)
        }
        defer out.Close()
    }

    w := bufio.NewWriterSize(out, 1<<20)
    defer w.Flush()

    for i := 0; i < *n; i++ {
        fmt.Fprintln(w, gen())
    }
}
