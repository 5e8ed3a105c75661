package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kilnsos "github.com/Davphla/kiln-sos"
	"github.com/google/go-cmp/cmp"
)

const dataset = "Date,Close,Currency\n" +
	"01/02/2025,1.0393,EURUSD\n" +
	"17/02/2025,1.03902,EURUSD\n" +
	"01/02/2025,0.171,BRLUSD\n"

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return p
}

// line returns the output line starting with prefix
func line(out, prefix string) string {
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, prefix) {
			return l
		}
	}

	return ""
}

func TestRealMain(t *testing.T) {
	t.Parallel()

	data := writeDataset(t, "forward_rates.csv", dataset)

	testCases := []struct {
		name     string
		args     []string
		expected map[string][]string
	}{
		{
			name: "test_summary",
			args: []string{"-data", data, "-pair", " EURUSD ", "-date", "2025-02-09", "-apy", "3.98%"},
			expected: map[string][]string{
				"pair":         {"EURUSD"},
				"target":       {"2025-02-09"},
				"current rate": {"1.039300"},
				"forward rate": {"1.039160"},
				"hedge cost":   {"-0.0135%"},
				"net yield":    {"3.99%"},
			},
		},
		{
			name: "test_summary_no_result",
			args: []string{"-data", data, "-date", "2025-03-01"},
			expected: map[string][]string{
				"current rate": {"1.039300"},
				"forward rate": {placeholder},
				"hedge cost":   {placeholder},
			},
		},
		{
			name: "test_summary_unknown_pair",
			args: []string{"-data", data, "-pair", "GBPUSD", "-date", "2025-02-09"},
			expected: map[string][]string{
				"current rate": {placeholder},
				"forward rate": {placeholder},
			},
		},
		{
			name: "test_schedule",
			args: []string{"-data", data, "-date", "2025-02-09", "-apy", "3.98", "-schedule"},
			expected: map[string][]string{
				"horizon": {"net yield"},
				"1 week":  {"2025-02-16", "-0.0253%", "4.01%"},
				"1 month": {"2025-03-11", placeholder},
				"1 year":  {"2026-02-09", placeholder},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			if err := realMain(context.Background(), tc.args, &stdout, &stderr); err != nil {
				t.Fatalf("real main: %v, stderr: %s", err, stderr.String())
			}

			out := stdout.String()
			for prefix, values := range tc.expected {
				l := line(out, prefix)
				if l == "" {
					t.Fatalf("no line %q in:\n%s", prefix, out)
				}

				for _, v := range values {
					if !strings.Contains(l, v) {
						t.Errorf("line %q: want %q", l, v)
					}
				}
			}
		})
	}
}

func TestRealMain_Failures(t *testing.T) {
	t.Parallel()

	data := writeDataset(t, "forward_rates.csv", dataset)
	broken := writeDataset(t, "broken.csv", "Date,Close,Currency\n01/02/2025,n/a,EURUSD\n17/02/2025,1.03902,EURUSD\n")

	testCases := []struct {
		name string
		args []string
		err  error
	}{
		{
			name: "test_no_data",
			args: []string{"-date", "2025-02-09"},
			err:  errUsage,
		},
		{
			name: "test_bad_pair",
			args: []string{"-data", data, "-pair", "  "},
			err:  errUsage,
		},
		{
			name: "test_bad_date",
			args: []string{"-data", data, "-date", "09/02/2025"},
			err:  errUsage,
		},
		{
			name: "test_bad_apy",
			args: []string{"-data", data, "-apy", "lots"},
			err:  errUsage,
		},
		{
			name: "test_missing_file",
			args: []string{"-data", filepath.Join(t.TempDir(), "missing.csv")},
			err:  fs.ErrNotExist,
		},
		{
			name: "test_bad_rate",
			args: []string{"-data", broken, "-date", "2025-02-09"},
			err:  kilnsos.ErrInvalidRateValue,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			err := realMain(context.Background(), tc.args, &stdout, &stderr)
			if !errors.Is(err, tc.err) {
				t.Fatalf("got %v, want %v", err, tc.err)
			}
		})
	}
}

func TestRealMain_PairsMatchedExactly(t *testing.T) {
	t.Parallel()

	data := writeDataset(t, "forward_rates.csv", "Date,Close,Currency\n"+
		"01/02/2025,1.0393,EUR/USD\n"+
		"17/02/2025,1.03902,EUR/USD\n"+
		"01/02/2025,1.2,eurusd\n")

	testCases := []struct {
		name    string
		pair    string
		current string
		forward string
	}{
		{
			name:    "test_pair_with_slash",
			pair:    "EUR/USD",
			current: "1.039300",
			forward: "1.039160",
		},
		{
			name:    "test_pair_lower_case",
			pair:    "eurusd",
			current: "1.200000",
			forward: placeholder,
		},
		{
			name:    "test_pair_not_folded",
			pair:    "EURUSD",
			current: placeholder,
			forward: placeholder,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			args := []string{"-data", data, "-pair", tc.pair, "-date", "2025-02-09"}
			if err := realMain(context.Background(), args, &stdout, &stderr); err != nil {
				t.Fatalf("real main: %v, stderr: %s", err, stderr.String())
			}

			out := stdout.String()
			if l := line(out, "current rate"); !strings.Contains(l, tc.current) {
				t.Errorf("line %q: want %q", l, tc.current)
			}

			if l := line(out, "forward rate"); !strings.Contains(l, tc.forward) {
				t.Errorf("line %q: want %q", l, tc.forward)
			}
		})
	}
}

func TestRealMain_List(t *testing.T) {
	t.Parallel()

	data := writeDataset(t, "forward_rates.csv", dataset)

	var stdout, stderr bytes.Buffer
	if err := realMain(context.Background(), []string{"-data", data, "-list"}, &stdout, &stderr); err != nil {
		t.Fatalf("real main: %v, stderr: %s", err, stderr.String())
	}

	if diff := cmp.Diff("EURUSD\nBRLUSD\n", stdout.String()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestRealMain_MultipleSources(t *testing.T) {
	t.Parallel()

	first := writeDataset(t, "january.csv", "Date,Close,Currency\n01/02/2025,1.0393,EURUSD\n")
	second := writeDataset(t, "february.json", `[{"Date ": "17/02/2025", "Close": "1.03902", "Currency": "EURUSD"}]`)

	var stdout, stderr bytes.Buffer
	args := []string{"-data", first + "," + second, "-date", "2025-02-09"}
	if err := realMain(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("real main: %v, stderr: %s", err, stderr.String())
	}

	if l := line(stdout.String(), "forward rate"); !strings.Contains(l, "1.039160") {
		t.Errorf("line %q: want %q", l, "1.039160")
	}
}
