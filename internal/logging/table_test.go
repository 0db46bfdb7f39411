package logging

import (
	"strings"
	"testing"
	"time"
)

func TestTableAlignment(t *testing.T) {
	table := Table{
		Headers: []string{"Elapsed", "Event", "Level", "Detail"},
		Rows: []Row{
			{Values: []string{"00:03.20", "confirmed", "energetic", "fusion"}},
			{Values: []string{"00:04.10", "swap", "calm", "Velvet Hour"}},
		},
	}

	out := table.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("rendered %d lines, want header + 2 rows:\n%s", len(lines), out)
	}

	// Inner columns are right-aligned to the widest value, so every line
	// has the same width up to the final free-text column.
	headerPrefix := lines[0][:strings.Index(lines[0], "Detail")]
	for i, line := range lines[1:] {
		if len(line) < len(headerPrefix) {
			t.Errorf("row %d shorter than the aligned header prefix:\n%s", i, out)
		}
	}
	if !strings.Contains(lines[1], "confirmed") || !strings.Contains(lines[1], "fusion") {
		t.Errorf("first row lost values:\n%s", out)
	}
	// The widest event value sets the column width; "swap" is padded to it.
	if !strings.Contains(lines[2], "     swap") {
		t.Errorf("short event value not right-aligned:\n%s", out)
	}
}

func TestTableEmpty(t *testing.T) {
	table := Table{Headers: []string{"A", "B"}}
	if out := table.String(); out != "" {
		t.Errorf("empty table rendered %q, want empty string", out)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "zero", in: "0s", want: "00:00.00"},
		{name: "seconds", in: "3.2s", want: "00:03.20"},
		{name: "minutes", in: "1m15.5s", want: "01:15.50"},
		{name: "negative clamps", in: "-5s", want: "00:00.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := time.ParseDuration(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got := formatElapsed(d); got != tt.want {
				t.Errorf("formatElapsed(%v) = %q, want %q", d, got, tt.want)
			}
		})
	}
}
