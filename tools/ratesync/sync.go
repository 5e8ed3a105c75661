package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Davphla/kiln-sos/internal/hashio"
	"github.com/Davphla/kiln-sos/internal/logging"
	"github.com/Davphla/kiln-sos/provider/codec"
	"github.com/Davphla/kiln-sos/provider/httputil"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
)

const defaultRequestTimeout = 10 * time.Second

var ErrHashingContentEqual = errors.New("hash of the fetching file is equivalent to the previous version")

type syncer struct {
	client     *http.Client
	target     string
	hasherFunc func() hash.Hash
	timeout    time.Duration
}

func (s syncer) realMain(ctx context.Context, list []dataset) error {
	var multiErr multierror.Group
	client := httputil.NewHTTPClient(s.client)

	for _, d := range list {
		d := d
		multiErr.Go(func() error {
			u, err := url.Parse(d.url)
			if err != nil {
				return fmt.Errorf("%s: url parse: %w", d.file, err)
			}

			if err := s.sync(ctx, client, *u, filepath.Join(s.target, d.file)); err != nil {
				return fmt.Errorf("%s: %w", d.file, err)
			}

			return nil
		})
	}

	if err := multiErr.Wait(); err != nil {
		return err
	}

	return nil
}

// sync downloads u and replaces fileName when the body decodes and differs from the file on disk
func (s syncer) sync(ctx context.Context, client httputil.SourceHTTPClient, u url.URL, fileName string) error {
	logger := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		oldHash, newHash []byte
		mode             os.FileMode = 0o600
	)

	resp, err := client.Fetch(ctx, u)
	if err != nil {
		return fmt.Errorf("http client fetch: %w", err)
	}

	if err := validate(resp, fileName); err != nil {
		return fmt.Errorf("validate body: %w", err)
	}

	oldHash, err = hashio.ReadFile(os.DirFS(filepath.Dir(fileName)), filepath.Base(fileName), hashio.HashSumFunc(s.hasherFunc))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("hashing file content: %w", err)
		}
	}

	newHash, err = hashio.ReadAll(bytes.NewReader(resp.Body), s.hasherFunc())
	if err != nil {
		return fmt.Errorf("hashing body content: %w", err)
	}

	if bytes.Equal(newHash, oldHash) {
		return ErrHashingContentEqual
	}

	info, err := os.Stat(fileName)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat file: %w", err)
		}
	}

	if info != nil {
		mode = info.Mode()
	}

	if err := os.WriteFile(fileName, resp.Body, mode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	_ = level.Info(logger).Log("msg", "dataset updated", "file", fileName, "bytes", len(resp.Body))

	return nil
}

// validate refuses a body that would not load back from fileName
func validate(resp httputil.Response, fileName string) error {
	decodeFn, err := codec.ForExtension(fileName)
	if err != nil {
		if decodeFn, err = codec.ForContentType(resp.ContentType); err != nil {
			return err
		}
	}

	list, err := decodeFn(resp.Body)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		return fmt.Errorf("%w: no observations", codec.ErrAttributeNotValid)
	}

	return nil
}
