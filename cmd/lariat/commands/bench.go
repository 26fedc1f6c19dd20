package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/lariat/internal/config"
	"github.com/Sumatoshi-tech/lariat/pkg/intern"
	"github.com/Sumatoshi-tech/lariat/pkg/observability"
)

const (
	benchCmdUse   = "bench"
	benchCmdShort = "Run a synthetic interning workload"

	benchStringsFlag     = "strings"
	benchStringsUsage    = "number of distinct strings in the workload"
	benchValueLengthFlag = "value-length"
	benchValueLengthUsag = "length of each generated string"
	benchWorkersFlag     = "workers"
	benchWorkersUsage    = "number of concurrent workers"
	benchRoundsFlag      = "rounds"
	benchRoundsUsage     = "passes each worker makes over the vocabulary"
	serveFlag            = "serve"
	serveUsage           = "address to serve Prometheus metrics on (empty = disabled)"

	defaultBenchRounds     = 4
	metricsPath            = "/metrics"
	serveReadHeaderTimeout = 5 * time.Second
	serveShutdownTimeout   = 5 * time.Second
)

// benchResult summarizes one workload run.
type benchResult struct {
	Ops      int
	Elapsed  time.Duration
	Distinct int
	Arena    int
}

// NewBenchCommand creates the bench subcommand.
func NewBenchCommand() *cobra.Command {
	var (
		numStrings  int
		valueLength int
		workers     int
		rounds      int
		serveAddr   string
	)

	cmd := &cobra.Command{
		Use:   benchCmdUse,
		Short: benchCmdShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}

			if numStrings > 0 {
				cfg.Bench.Strings = numStrings
			}

			if valueLength > 0 {
				cfg.Bench.ValueLength = valueLength
			}

			if workers > 0 {
				cfg.Bench.Workers = workers
			}

			return runBench(cmd.Context(), cfg, rounds, serveAddr, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&numStrings, benchStringsFlag, 0, benchStringsUsage)
	cmd.Flags().IntVar(&valueLength, benchValueLengthFlag, 0, benchValueLengthUsag)
	cmd.Flags().IntVar(&workers, benchWorkersFlag, 0, benchWorkersUsage)
	cmd.Flags().IntVar(&rounds, benchRoundsFlag, defaultBenchRounds, benchRoundsUsage)
	cmd.Flags().StringVar(&serveAddr, serveFlag, "", serveUsage)

	return cmd
}

func runBench(ctx context.Context, cfg *config.Config, rounds int, serveAddr string, out io.Writer) error {
	meter, handler, err := benchMeter(serveAddr)
	if err != nil {
		return err
	}

	metrics, err := observability.NewInternMetrics(meter)
	if err != nil {
		return err
	}

	limit, err := cfg.MemoryLimitBytes()
	if err != nil {
		return err
	}

	opts := append(
		internerOptions(limit, cfg.Interner.MaxKeys, cfg.Interner.Capacity),
		intern.WithShards(cfg.Interner.Shards),
	)
	rodeo := intern.NewThreaded(opts...)

	gaugeErr := observability.RegisterStatsGauges(meter, rodeo.Stats)
	if gaugeErr != nil {
		return gaugeErr
	}

	var server *http.Server

	if serveAddr != "" {
		server = serveMetrics(serveAddr, handler)

		fmt.Fprintf(out, "serving metrics on %s%s\n", serveAddr, metricsPath)
	}

	vocabulary := buildVocabulary(cfg.Bench.Strings, cfg.Bench.ValueLength)

	result, err := runWorkload(ctx, rodeo, metrics, vocabulary, cfg.Bench.Workers, rounds)
	if err != nil {
		return err
	}

	renderBenchTable(result, cfg.Bench.Workers, out)

	if server != nil {
		// Keep the metrics endpoint alive for scraping until interrupted.
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	}

	return nil
}

// benchMeter builds the meter for the run: a Prometheus-backed one when
// serving, a noop one otherwise.
func benchMeter(serveAddr string) (metric.Meter, http.Handler, error) {
	if serveAddr == "" {
		providers, err := observability.Init(context.Background(), observability.Config{Service: "lariat"})
		if err != nil {
			return nil, nil, err
		}

		return providers.Meter, nil, nil
	}

	provider, handler, err := observability.NewPrometheusProvider()
	if err != nil {
		return nil, nil, err
	}

	return provider.Meter("lariat"), handler, nil
}

func serveMetrics(addr string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: serveReadHeaderTimeout,
	}

	go server.ListenAndServe() //nolint:errcheck // best-effort metrics endpoint.

	return server
}

// buildVocabulary generates count strings of the given length.
func buildVocabulary(count, length int) []string {
	vocabulary := make([]string, count)

	for i := range count {
		token := fmt.Sprintf("w%d", i)
		if len(token) < length {
			token += strings.Repeat("x", length-len(token))
		}

		vocabulary[i] = token
	}

	return vocabulary
}

// runWorkload interns the vocabulary from every worker for the given
// number of rounds. The first round is dominated by misses, later
// rounds by dedup hits.
func runWorkload(
	ctx context.Context,
	rodeo *intern.ThreadedRodeo,
	metrics *observability.InternMetrics,
	vocabulary []string,
	workers, rounds int,
) (benchResult, error) {
	start := time.Now()

	group, groupCtx := errgroup.WithContext(ctx)

	for worker := range workers {
		offset := worker * len(vocabulary) / workers

		group.Go(func() error {
			for round := range rounds {
				result := observability.ResultHit
				if round == 0 {
					result = observability.ResultMiss
				}

				for i := range vocabulary {
					if groupCtx.Err() != nil {
						return groupCtx.Err()
					}

					token := vocabulary[(offset+i)%len(vocabulary)]

					opStart := time.Now()

					_, err := rodeo.GetOrIntern(token)
					if err != nil {
						return fmt.Errorf("intern %q: %w", token, err)
					}

					metrics.RecordIntern(groupCtx, result, time.Since(opStart))
				}
			}

			return nil
		})
	}

	waitErr := group.Wait()
	if waitErr != nil {
		return benchResult{}, waitErr
	}

	stats := rodeo.Stats()

	return benchResult{
		Ops:      workers * rounds * len(vocabulary),
		Elapsed:  time.Since(start),
		Distinct: stats.Interned,
		Arena:    stats.ArenaBytes,
	}, nil
}

func renderBenchTable(result benchResult, workers int, out io.Writer) {
	opsPerSec := float64(result.Ops) / result.Elapsed.Seconds()

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"Workers", workers})
	tbl.AppendRow(table.Row{"Operations", result.Ops})
	tbl.AppendRow(table.Row{"Elapsed", result.Elapsed.Round(time.Millisecond)})
	tbl.AppendRow(table.Row{"Throughput", fmt.Sprintf("%s ops/s", humanize.CommafWithDigits(opsPerSec, 0))})
	tbl.AppendRow(table.Row{"Distinct strings", result.Distinct})
	tbl.AppendRow(table.Row{"Arena bytes", humanize.IBytes(uint64(result.Arena))})

	tbl.Render()

	color.New(color.FgGreen).Fprintf(out, "interned %d ops across %d workers\n", result.Ops, workers)
}
