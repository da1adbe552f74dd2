package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/usergraph-io/usergraph/internal/badgerstore"
	"github.com/usergraph-io/usergraph/internal/eventbus"
	"github.com/usergraph-io/usergraph/internal/graphrt"
	"github.com/usergraph-io/usergraph/internal/logging"
	"github.com/usergraph-io/usergraph/internal/memstore"
	"github.com/usergraph-io/usergraph/internal/otel"
	"github.com/usergraph-io/usergraph/internal/schema"
	"github.com/usergraph-io/usergraph/internal/server"
	"github.com/usergraph-io/usergraph/internal/store"
)

const rootUsage = `usergraph: GraphQL API over the social dataset

USAGE:
  usergraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL server
  print-sdl        Print the registry schema as SDL
  seed             Load a JSON seed file into a Badger data directory
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -data.backend <memory|badger>  Entity store backend (default: memory)
  -data.seed <file>              JSON seed file (required for memory backend)
  -data.dir <dir>                Badger data directory (badger backend)
  -server.addr <addr>            HTTP listen address (default: :8080)
  -server.pretty                 Pretty-print JSON responses
  -server.timeout <duration>     Per-request timeout, e.g. 10s (default: 10s)
  -server.cors <origin>          Allowed CORS origin. Repeatable; * allows all
  -log.debug                     Verbose human-readable logging
  -otel.endpoint <addr>          OTLP collector endpoint
  -otel.service <name>           OpenTelemetry service name (default: usergraph)
`

const printSDLUsage = `print-sdl FLAGS:
  -out <file>   Write SDL to file (default: stdout)
`

const seedUsage = `seed FLAGS:
  -data.dir <dir>    Badger data directory (required)
  -data.seed <file>  JSON seed file (required)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("usergraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "print-sdl":
		return cmdPrintSDL(cmdArgs)
	case "seed":
		return cmdSeed(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "print-sdl":
		fmt.Print(printSDLUsage)
	case "seed":
		fmt.Print(seedUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdServe(args []string) error {
	backend := "memory"
	seedFile := ""
	dataDir := ""
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	debug := false
	otelEndpoint := ""
	otelService := "usergraph"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&backend, "data.backend", backend, "Entity store backend")
	fs.StringVar(&seedFile, "data.seed", seedFile, "JSON seed file")
	fs.StringVar(&dataDir, "data.dir", dataDir, "Badger data directory")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Var(&corsOrigins, "server.cors", "Allowed CORS origin")
	fs.BoolVar(&debug, "log.debug", debug, "Verbose logging")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	var st store.Store
	switch backend {
	case "memory":
		if seedFile == "" {
			fmt.Fprint(os.Stderr, serveUsage)
			return fmt.Errorf("-data.seed is required for the memory backend")
		}
		ms, err := memstore.LoadFile(seedFile)
		if err != nil {
			return err
		}
		st = ms
	case "badger":
		if dataDir == "" {
			fmt.Fprint(os.Stderr, serveUsage)
			return fmt.Errorf("-data.dir is required for the badger backend")
		}
		bs, err := badgerstore.Open(dataDir)
		if err != nil {
			return err
		}
		defer bs.Close()
		if seedFile != "" {
			data, err := readSeed(seedFile)
			if err != nil {
				return err
			}
			if err := bs.Seed(data); err != nil {
				return fmt.Errorf("seed badger: %w", err)
			}
		}
		st = bs
	default:
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("unknown backend %q", backend)
	}

	eventbus.Use(eventbus.New())
	logger, flush, err := logging.New(debug)
	if err != nil {
		return fmt.Errorf("logging setup: %w", err)
	}
	defer func() { _ = flush() }()
	logging.RegisterSubscriber(logger)

	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	st = store.WithEvents(st)

	sch, err := graphrt.NewSchema()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	runtime, err := graphrt.NewRuntime(sch, st)
	if err != nil {
		return fmt.Errorf("runtime init: %w", err)
	}

	var sopts []server.Option
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h, err := server.New(runtime, sch, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("GraphQL server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func cmdPrintSDL(args []string) error {
	outFile := ""
	fs := flag.NewFlagSet("print-sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, printSDLUsage)
		return err
	}

	sch, err := graphrt.NewSchema()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	sdl := schema.Render(sch)
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0o644)
}

func cmdSeed(args []string) error {
	seedFile := ""
	dataDir := ""
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&dataDir, "data.dir", dataDir, "Badger data directory")
	fs.StringVar(&seedFile, "data.seed", seedFile, "JSON seed file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, seedUsage)
		return err
	}
	if dataDir == "" || seedFile == "" {
		fmt.Fprint(os.Stderr, seedUsage)
		return fmt.Errorf("-data.dir and -data.seed are required")
	}

	data, err := readSeed(seedFile)
	if err != nil {
		return err
	}
	bs, err := badgerstore.Open(dataDir)
	if err != nil {
		return err
	}
	defer bs.Close()
	if err := bs.Seed(data); err != nil {
		return fmt.Errorf("seed badger: %w", err)
	}
	log.Printf("seeded %s from %s", dataDir, seedFile)
	return nil
}

func readSeed(path string) (badgerstore.SeedData, error) {
	var data badgerstore.SeedData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("read seed: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return data, nil
}
