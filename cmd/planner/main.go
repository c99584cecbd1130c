// Command planner replays scenario files through the decision agent and
// prints one JSON decision per line. With -serve the decisions are also
// streamed to websocket viewers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/zeusync/strikeplan/internal/config"
	"github.com/zeusync/strikeplan/internal/core/agent"
	"github.com/zeusync/strikeplan/internal/core/events/bus"
	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
	"github.com/zeusync/strikeplan/internal/injector"
	"github.com/zeusync/strikeplan/internal/server"
	"github.com/zeusync/strikeplan/pkg/concurrent"
)

func main() {
	var (
		configPath = flag.String("config", "", "planner configuration YAML (optional)")
		fieldPath  = flag.String("field", "", "field override YAML, replaces field.path from the config")
		serveAddr  = flag.String("serve", "", "serve the websocket debug stream on this address and wait for interrupt")
		workers    = flag.Int("workers", 4, "scenarios replayed at once")
		outPath    = flag.String("out", "", "write decisions here instead of stdout; .zst compresses")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: planner [flags] scenario.yaml...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options{
		config:    *configPath,
		field:     *fieldPath,
		serve:     *serveAddr,
		workers:   *workers,
		out:       *outPath,
		scenarios: flag.Args(),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "planner:", err)
		os.Exit(1)
	}
}

type options struct {
	config    string
	field     string
	serve     string
	workers   int
	out       string
	scenarios []string
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.LoadFile(opts.config)
	if err != nil {
		return err
	}
	if opts.field != "" {
		cfg.Field.Path = opts.field
	}
	if opts.serve != "" {
		cfg.Server.Addr = opts.serve
	}

	logger, err := injector.InitializeLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f, err := cfg.BuildField()
	if err != nil {
		return err
	}
	b := injector.ProvideBus()
	b.AddObserver(slowDeliveries{log: logger, limit: 5 * time.Millisecond})

	var srv *server.HTTPServer
	if opts.serve != "" {
		stream := server.NewDebugStream(logger)
		if err := stream.Attach(b); err != nil {
			return err
		}
		srv = server.NewHTTPServer(stream, cfg.Server.Path, logger)
		if err := srv.Start(ctx, cfg.Server.Addr); err != nil {
			return fmt.Errorf("start debug stream: %w", err)
		}
	}

	scenarios, err := concurrent.Map(ctx, opts.scenarios, opts.workers, func(_ context.Context, path string) (Scenario, error) {
		return LoadScenario(path)
	})
	if err != nil {
		return err
	}
	results, err := replay(ctx, scenarios, cfg, f, logger, b, opts.workers)
	if err != nil {
		return err
	}
	if err := write(opts.out, results); err != nil {
		return err
	}
	m := b.Metrics()
	logger.Info("replay finished",
		log.Int("scenarios", len(scenarios)),
		log.Int("decisions", len(results)),
		log.Uint64("published", m.Published),
		log.Uint64("subscriber_errors", m.Errors),
	)

	if srv != nil {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdown); err != nil && !errors.Is(err, server.ErrServerNotRunning) {
			return err
		}
	}
	return nil
}

func replay(ctx context.Context, scenarios []Scenario, cfg config.Config, f field.Field, logger log.Log, b *bus.Bus[agent.Decision], workers int) ([]Result, error) {
	perScenario, err := concurrent.Map(ctx, scenarios, workers, func(ctx context.Context, s Scenario) ([]Result, error) {
		return Run(ctx, s, cfg, f, logger, b)
	})
	if err != nil {
		return nil, err
	}
	var out []Result
	for _, rs := range perScenario {
		out = append(out, rs...)
	}
	return out, nil
}

// write emits results as JSON lines to path, or stdout when path is empty.
func write(path string, results []Result) (err error) {
	var w io.Writer = os.Stdout
	if path != "" {
		fh, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := fh.Close(); err == nil {
				err = cerr
			}
		}()
		w = fh
		if strings.HasSuffix(path, ".zst") {
			enc, zerr := zstd.NewWriter(fh)
			if zerr != nil {
				return zerr
			}
			defer func() {
				if cerr := enc.Close(); err == nil {
					err = cerr
				}
			}()
			w = enc
		}
	}
	return encode(w, results)
}

func encode(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}
	}
	return nil
}

// slowDeliveries reports decision deliveries that held up an agent.
type slowDeliveries struct {
	log   log.Log
	limit time.Duration
}

func (o slowDeliveries) OnDelivered(topic string, handlers int, err error, took time.Duration) {
	if took > o.limit {
		o.log.Warn("slow decision delivery",
			log.String("topic", topic),
			log.Int("handlers", handlers),
			log.Duration("took", took),
		)
	}
}
