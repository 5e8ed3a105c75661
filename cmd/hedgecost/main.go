package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	kilnsos "github.com/Davphla/kiln-sos"
	"github.com/Davphla/kiln-sos/internal/logging"
	"github.com/Davphla/kiln-sos/label"
	"github.com/Davphla/kiln-sos/provider"
	"github.com/Davphla/kiln-sos/provider/file"
	"github.com/Davphla/kiln-sos/provider/remote"
	"github.com/Davphla/kiln-sos/rate"
	"github.com/go-kit/log/level"
	"github.com/shopspring/decimal"
)

const (
	dateLayout  = "2006-01-02"
	placeholder = "--"
)

var errUsage = errors.New("usage")

type config struct {
	data     []string
	pair     label.Pair
	target   time.Time
	apy      *decimal.Decimal
	schedule bool
	list     bool
	debug    bool
}

func main() {
	if err := realMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func realMain(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(stderr, "hedgecost", cfg.debug)
	ctx = logging.WithLogger(ctx, logger)

	records, err := load(ctx, cfg.data)
	if err != nil {
		_ = level.Error(logger).Log("msg", "load observations", "err", err)
		return err
	}

	if cfg.list {
		for _, p := range rate.Pairs(records) {
			fmt.Fprintln(stdout, p)
		}

		return nil
	}

	calc := kilnsos.New(kilnsos.WithLogger(logger), kilnsos.WithLocation(time.UTC))

	currentText := placeholder
	current, err := calc.CurrentRate(records, cfg.pair)
	switch {
	case err == nil:
		currentText = decimal.NewFromFloat(current).StringFixed(6)
	case errors.Is(err, kilnsos.ErrNoDataForCurrency):
		_ = level.Warn(logger).Log("msg", "no observations", "pair", cfg.pair)
	default:
		_ = level.Error(logger).Log("msg", "current rate", "pair", cfg.pair, "err", err)
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "pair\t%s\n", cfg.pair)
	fmt.Fprintf(w, "target\t%s\n", cfg.target.Format(dateLayout))
	fmt.Fprintf(w, "current rate\t%s\n", currentText)

	if forward, ok := calc.ForwardRate(records, cfg.pair, cfg.target); ok {
		fmt.Fprintf(w, "forward rate\t%s\n", decimal.NewFromFloat(forward).StringFixed(6))
	} else {
		fmt.Fprintf(w, "forward rate\t%s\n", placeholder)
	}

	if hedgeCost, ok := calc.HedgeCost(records, cfg.pair, cfg.target); ok {
		fmt.Fprintf(w, "hedge cost\t%s\n", percent(decimal.NewFromFloat(hedgeCost).Mul(decimal.NewFromInt(100)), 4))
		if cfg.apy != nil {
			fmt.Fprintf(w, "net yield\t%s\n", percent(kilnsos.NetYield(*cfg.apy, hedgeCost), 2))
		}
	} else {
		fmt.Fprintf(w, "hedge cost\t%s\n", placeholder)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if !cfg.schedule {
		return nil
	}

	return printSchedule(ctx, stdout, calc, records, cfg)
}

func printSchedule(
	ctx context.Context, stdout io.Writer, calc *kilnsos.Calculator, records []rate.Observation, cfg config,
) error {
	logger := logging.FromContext(ctx)

	quotes, err := calc.Schedule(records, cfg.pair, cfg.target)
	if err != nil {
		_ = level.Debug(logger).Log("msg", "schedule incomplete", "err", err)
	}

	byDays := make(map[int]kilnsos.HedgeQuote, len(quotes))
	for _, q := range quotes {
		byDays[q.Horizon.Days] = q
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w)

	if cfg.apy != nil {
		fmt.Fprintln(w, "horizon\ttarget\tforward\tcost\tnet yield")
	} else {
		fmt.Fprintln(w, "horizon\ttarget\tforward\tcost")
	}

	for _, h := range kilnsos.DefaultHorizons {
		row := []string{h.String(), h.Target(cfg.target).Format(dateLayout), placeholder, placeholder}
		if cfg.apy != nil {
			row = append(row, placeholder)
		}

		if q, ok := byDays[h.Days]; ok {
			row[2] = decimal.NewFromFloat(q.ForwardRate).StringFixed(6)
			row[3] = percent(q.CostPercent(), 4)
			if cfg.apy != nil {
				row[4] = percent(q.NetYield(*cfg.apy), 2)
			}
		}

		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}

	return nil
}

func percent(d decimal.Decimal, places int32) string {
	return d.StringFixed(places) + "%"
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("hedgecost", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		data     = fs.String("data", "", "comma separated dataset paths or URLs (.json, .csv, .html)")
		pair     = fs.String("pair", string(label.EURUSD), "currency pair as tagged in the dataset, e.g. EURUSD")
		date     = fs.String("date", time.Now().UTC().Format(dateLayout), "target date, YYYY-MM-DD")
		apy      = fs.String("apy", "", "yield to net the hedge cost from, e.g. 3.98%")
		schedule = fs.Bool("schedule", false, "print the cost over the default horizons")
		list     = fs.Bool("list", false, "print the currency pairs of the datasets and exit")
		debug    = fs.Bool("debug", false, "log debug records")
	)

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := config{schedule: *schedule, list: *list, debug: *debug}

	for _, d := range strings.Split(*data, ",") {
		if d = strings.TrimSpace(d); d != "" {
			cfg.data = append(cfg.data, d)
		}
	}

	if len(cfg.data) == 0 {
		fmt.Fprintln(stderr, "use -data <path|url>[,<path|url>...]")
		return config{}, errUsage
	}

	cfg.pair = label.Pair(strings.TrimSpace(*pair))
	if cfg.pair == "" {
		fmt.Fprintln(stderr, "-pair must not be empty")
		return config{}, errUsage
	}

	target, err := time.ParseInLocation(dateLayout, *date, time.UTC)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -date %q: %v\n", *date, err)
		return config{}, errUsage
	}
	cfg.target = target

	if *apy != "" {
		d, err := kilnsos.ParseYield(*apy)
		if err != nil {
			fmt.Fprintf(stderr, "invalid -apy: %v\n", err)
			return config{}, errUsage
		}
		cfg.apy = &d
	}

	return cfg, nil
}

// load reads every dataset, failing when any of them can not be read
func load(ctx context.Context, data []string) ([]rate.Observation, error) {
	sources := make([]provider.Source, 0, len(data))
	for _, d := range data {
		s, err := sourceFor(d)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	if len(sources) == 1 {
		return sources[0].FetchObservations(ctx)
	}

	return provider.NewMulti(sources...).FetchObservations(ctx)
}

func sourceFor(location string) (provider.Source, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parse url %s: %w", location, err)
		}

		return remote.NewSource(&http.Client{}, *u), nil
	}

	return file.NewSource(os.DirFS(filepath.Dir(location)), filepath.Base(location)), nil
}
