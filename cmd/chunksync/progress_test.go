package main

import (
	"strings"
	"testing"
	"time"
)

func TestProgressLine(t *testing.T) {
	cases := []struct {
		done, total, width int
		want               string
	}{
		{
			done: 0, total: 4, width: 80,
			want: "Copy progress:   0% |" + strings.Repeat(" ", 30) + "| 0/4 chunks [elapsed 1.50s]",
		},
		{
			done: 2, total: 4, width: 80,
			want: "Copy progress:  50% |" + strings.Repeat("#", 15) + strings.Repeat(" ", 15) + "| 2/4 chunks [elapsed 1.50s]",
		},
		{
			done: 4, total: 4, width: 20,
			want: "Copy progress: 100% 4/4 chunks [elapsed 1.50s]",
		},
		{
			done: 0, total: 0, width: 20,
			want: "Copy progress:   0% 0/0 chunks [elapsed 1.50s]",
		},
	}
	for i, c := range cases {
		got := progressLine(c.done, c.total, 1500*time.Millisecond, c.width)
		if got != c.want {
			t.Errorf("case %d: got\n%q\nwant\n%q", i, got, c.want)
		}
		if c.width >= 60 && len(got) != c.width-1 {
			t.Errorf("case %d: got length %d, want %d", i, len(got), c.width-1)
		}
	}
}
