package provision

import (
	"io"
	"strconv"

	"github.com/netops-tools/sasectl/pkg/cli"
)

var summaryColumns = []Outcome{Created, Updated, Deleted, Absent, Planned, Failed}

// Summary counts outcomes per object kind, in first-seen kind order.
type Summary struct {
	kinds  []string
	counts map[string]map[Outcome]int
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{counts: make(map[string]map[Outcome]int)}
}

// Add counts one outcome for kind.
func (s *Summary) Add(kind string, o Outcome) {
	c, ok := s.counts[kind]
	if !ok {
		c = make(map[Outcome]int)
		s.counts[kind] = c
		s.kinds = append(s.kinds, kind)
	}
	c[o]++
}

// Count returns the number of kind objects with outcome o.
func (s *Summary) Count(kind string, o Outcome) int {
	return s.counts[kind][o]
}

// Failed returns the number of failed objects across all kinds.
func (s *Summary) Failed() int {
	n := 0
	for _, c := range s.counts {
		n += c[Failed]
	}
	return n
}

// Print writes the summary as a table. Nothing is written when no
// objects were processed.
func (s *Summary) Print(w io.Writer) {
	headers := []string{"KIND"}
	for _, o := range summaryColumns {
		headers = append(headers, string(o))
	}
	if len(s.kinds) > 0 {
		io.WriteString(w, "\n"+cli.Bold("Summary")+"\n")
	}
	t := cli.NewTable(w, headers...)
	for _, kind := range s.kinds {
		row := []string{kind}
		for _, o := range summaryColumns {
			row = append(row, strconv.Itoa(s.counts[kind][o]))
		}
		t.Row(row...)
	}
	t.Flush()
}
