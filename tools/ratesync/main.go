package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Davphla/kiln-sos/internal/hashio"
	"github.com/Davphla/kiln-sos/internal/logging"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
)

var flagSync = flag.NewFlagSet("ratesync", flag.ContinueOnError)

var (
	path     = flagSync.String("target", "", "path to the folder with the datasets")
	hashFunc = flagSync.String("hash", "", "hash alg for compare files, variants: md5, sha1")
	timeout  = flagSync.Duration("timeout", defaultRequestTimeout, "timeout of each download")
	debug    = flagSync.Bool("debug", false, "log debug records")
	datasets datasetList
)

func init() {
	flagSync.Var(&datasets, "url", "dataset to download as file=URL, repeatable")
}

// datasetList collects the repeated -url flags
type datasetList []dataset

type dataset struct {
	file string
	url  string
}

func (l *datasetList) String() string {
	list := make([]string, 0, len(*l))
	for _, d := range *l {
		list = append(list, d.file+"="+d.url)
	}

	return strings.Join(list, ",")
}

func (l *datasetList) Set(value string) error {
	file, u, ok := strings.Cut(value, "=")
	if !ok || file == "" || u == "" {
		return fmt.Errorf("want file=URL, got %q", value)
	}

	*l = append(*l, dataset{file: file, url: u})

	return nil
}

func main() {
	if err := flagSync.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	logger := logging.NewLogger(os.Stderr, "ratesync", *debug)
	ctx := logging.WithLogger(context.Background(), logger)

	if *path == "" || len(datasets) == 0 {
		_ = level.Error(logger).Log("msg", "use -target <path> -url <file=URL> [-url <file=URL>...]")
		os.Exit(2)
	}

	hasherFunc, err := hashio.Hasher(*hashFunc)
	if err != nil {
		_ = level.Error(logger).Log("msg", "bad -hash", "err", err)
		os.Exit(2)
	}

	client := &http.Client{Transport: &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		DisableCompression:    true,
		IdleConnTimeout:       5 * time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}}

	s := syncer{client: client, target: *path, hasherFunc: hasherFunc, timeout: *timeout}
	if err := s.realMain(ctx, datasets); err != nil {
		var multiErr *multierror.Error
		if errors.As(err, &multiErr) {
			failed := false
			for _, wrErr := range multiErr.WrappedErrors() {
				if errors.Is(wrErr, ErrHashingContentEqual) {
					_ = level.Warn(logger).Log("msg", "dataset unchanged", "err", wrErr)
					continue
				}

				failed = true
				_ = level.Error(logger).Log("msg", "dataset not synced", "err", wrErr)
			}

			if failed {
				os.Exit(1)
			}
			return
		}

		_ = level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}
