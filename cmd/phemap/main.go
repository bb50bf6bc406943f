// Package main implements the phemap CLI tool for querying the PheWAS
// catalog reference tables from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/spiros/phemap"
	"github.com/spiros/phemap/engine"
	"github.com/spiros/phemap/fhir"
	"github.com/spiros/phemap/rows"
	"github.com/spiros/phemap/server"
)

const (
	version = "0.2.0"
	usage   = `phemap - ICD-10 to PheCode cross-reference tool

Usage:
  phemap [options] <command> [args]

Commands:
  info <phecode>        print a phecode's metadata
  phecode <icd10-term>  map an ICD-10 term to phecodes
  icd10 <phecode>       map a phecode to ICD-10 terms
  exclusions <phecode>  list phecodes in the exclusion range
  all                   print every phecode definition
  export                print the definitions as a FHIR R4 CodeSystem
  serve                 serve the HTTP API

Examples:
  phemap info 495
  phemap phecode J45.1
  phemap -undotted phecode J451
  phemap -output json exclusions 495
  phemap -definitions defs.csv -map map.csv serve -addr :8080

Options:
`
)

// Config holds CLI configuration.
type Config struct {
	Definitions string
	Map         string
	SQLite      string
	Output      string
	Undotted    bool
	Addr        string
	ShowVersion bool

	Command string
	Args    []string
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("phemap v%s (catalog release %s)\n", version, phemap.V1_2)
		os.Exit(0)
	}

	if config.Command == "" {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(config))
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.Definitions, "definitions", phemap.V1_2.DefinitionsFile(), "phecode definitions CSV file")
	flag.StringVar(&config.Map, "map", phemap.V1_2.ICD10MapFile(), "ICD-10 to phecode mapping CSV file")
	flag.StringVar(&config.SQLite, "sqlite", "", "read both tables from this SQLite database instead of CSV files")
	flag.StringVar(&config.Output, "output", "text", "output format: text, json")
	flag.BoolVar(&config.Undotted, "undotted", false, "treat ICD-10 arguments as dot-stripped (UK Biobank form)")
	flag.StringVar(&config.Addr, "addr", ":8080", "listen address for serve")
	flag.BoolVar(&config.ShowVersion, "v", false, "show version")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		config.Command = args[0]
		config.Args = args[1:]
	}

	return config
}

// sources returns the two row sources selected by the flags.
func sources(config *Config) (definitions, mapping rows.Source) {
	if config.SQLite != "" {
		definitions = rows.SQLiteTable(config.SQLite, "phecode_definitions",
			"phecode", "phenotype", "phecode_exclude_range", "sex",
			"rollup", "leaf", "category_number", "category")
		mapping = rows.SQLiteTable(config.SQLite, "phecode_map",
			"icd10", "phecode", "phecode_exclude_range", "phenotype_exlude")
		return definitions, mapping
	}
	return rows.CSVFile(config.Definitions), rows.CSVFile(config.Map)
}

func run(config *Config) int {
	ctx := context.Background()

	definitions, mapping := sources(config)
	eng, err := engine.New(ctx, definitions, mapping)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phemap: %v\n", err)
		return 1
	}

	var result any
	switch config.Command {
	case "info":
		result, err = runOne(config, func(code string) (any, error) {
			return eng.PhecodeInfo(ctx, code)
		})

	case "phecode":
		result, err = runOne(config, func(term string) (any, error) {
			if config.Undotted {
				term = phemap.RestoreICD10Dot(term)
			}
			return eng.PhecodesForICD10(ctx, term)
		})

	case "icd10":
		result, err = runOne(config, func(code string) (any, error) {
			return eng.ICD10ForPhecode(ctx, code)
		})

	case "exclusions":
		result, err = runOne(config, func(code string) (any, error) {
			return eng.Exclusions(ctx, code)
		})

	case "all":
		result, err = eng.AllPhecodes(ctx)

	case "export":
		result, err = fhir.CodeSystem(ctx, eng)

	case "serve":
		return serve(eng, config.Addr)

	default:
		fmt.Fprintf(os.Stderr, "phemap: unknown command %q\n", config.Command)
		flag.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "phemap: %v\n", err)
		return 1
	}

	return print(config.Output, result)
}

// runOne applies a single-argument query, enforcing the argument count.
func runOne(config *Config, query func(string) (any, error)) (any, error) {
	if len(config.Args) != 1 {
		return nil, fmt.Errorf("command %q takes exactly one argument", config.Command)
	}
	return query(config.Args[0])
}

func print(format string, result any) int {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "phemap: %v\n", err)
			return 1
		}

	default:
		printText(result)
	}
	return 0
}

func printText(result any) {
	switch v := result.(type) {
	case []string:
		for _, s := range v {
			fmt.Println(s)
		}

	case *phemap.PhecodeRecord:
		printRecord(v)

	case []phemap.PhecodeRecord:
		for i := range v {
			if i > 0 {
				fmt.Println()
			}
			printRecord(&v[i])
		}

	default:
		// FHIR resources and anything else render as JSON.
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Printf("%v\n", result)
			return
		}
		fmt.Println(string(data))
	}
}

func printRecord(rec *phemap.PhecodeRecord) {
	sex := "-"
	if rec.Sex != nil {
		sex = *rec.Sex
	}
	fmt.Printf("phecode:        %s\n", rec.Phecode)
	fmt.Printf("phenotype:      %s\n", rec.Phenotype)
	fmt.Printf("exclude range:  %s\n", rec.ExcludeRange)
	fmt.Printf("sex:            %s\n", sex)
	fmt.Printf("rollup/leaf:    %s/%s\n", rec.Rollup, rec.Leaf)
	fmt.Printf("category:       %s (%s)\n", rec.Category, rec.CategoryNumber)
}

func serve(eng *engine.Phemap, addr string) int {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	srv := server.New(eng, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
			return 1
		}
	}

	return 0
}
