package strutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRemoveExtraSpaces(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "test_not_modifying",
			source: "Close",
			want:   "Close",
		},
		{
			name:   "test_trailing_space",
			source: "Date ",
			want:   "Date",
		},
		{
			name:   "test_inner_spaces",
			source: "Close   price",
			want:   "Close price",
		},
		{
			name:   "test_inner_tab",
			source: "Currency \t pair",
			want:   "Currency pair",
		},
		{
			name:   "test_inner_outer",
			source: "   Close  price   ",
			want:   "Close price",
		},
	}

	for _, test := range testCases {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := RemoveExtraSpaces(test.source)
			if got != test.want {
				diff := cmp.Diff(test.want, got)
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveContentIntoBrackets(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "test_remove_round_brackets",
			source: "Close (USD)",
			want:   "Close ",
		},
		{
			name:   "test_remove_square_brackets",
			source: "Date [DD/MM/YYYY]",
			want:   "Date ",
		},
		{
			name:   "test_remove_only_brackets",
			source: "(Close)[Date]",
			want:   "",
		},
		{
			name:   "test_remove_nothing",
			source: "Currency",
			want:   "Currency",
		},
	}

	for _, test := range testCases {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := RemoveContentIntoBrackets(test.source)
			if got != test.want {
				diff := cmp.Diff(test.want, got)
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveNonAlphaNum(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "test_remove_colon",
			source: "Date:",
			want:   "Date",
		},
		{
			name:   "test_remove_byte_order_mark",
			source: "\ufeffDate",
			want:   "Date",
		},
		{
			name:   "test_remove_symbols",
			source: "*Close*",
			want:   "Close",
		},
	}

	for _, test := range testCases {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := RemoveNonAlphaNum(test.source)
			if got != test.want {
				diff := cmp.Diff(test.want, got)
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{name: "test_normalize_trailing_space", source: "Date ", want: "date"},
		{name: "test_normalize_upper", source: "CURRENCY", want: "currency"},
		{name: "test_normalize_unit", source: "Close (USD)", want: "close"},
		{name: "test_normalize_bom", source: "\ufeffDate", want: "date"},
		{name: "test_normalize_words", source: " Currency  Pair ", want: "currency pair"},
	}

	for _, test := range testCases {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(test.want, NormalizeKey(test.source)); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
