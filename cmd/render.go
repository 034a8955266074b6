package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/routelab/ripsim/core"
	"github.com/routelab/ripsim/state"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiCyan  = "\033[96m"
	ansiGreen = "\033[92m"
	ansiRed   = "\033[91m"
)

var noColor bool

func colored(text, color string) string {
	if noColor || text == "" {
		return text
	}
	return color + text + ansiReset
}

// renderTable lays the table out uncolored first, then colors whole lines,
// so the escape sequences cannot skew the column alignment.
func renderTable(w io.Writer, rs *state.RouterState) {
	entries := rs.Snapshot()

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Destination\tMask\tNext Hop\tMetric\tTimeout\tGC")
	for _, e := range entries {
		gc := "-"
		if e.Gc > 0 {
			gc = fmt.Sprint(e.Gc)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", e.Dest, e.Mask, e.Nh, e.Metric, e.Timeout, gc)
	}
	tw.Flush()

	fmt.Fprintln(w, colored(fmt.Sprintf("Routing table for %s", rs.Id), ansiBold+ansiCyan))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	fmt.Fprintln(w, lines[0])
	for i, line := range lines[1:] {
		color := ansiGreen
		if i < len(entries) && entries[i].Unreachable() {
			color = ansiRed
		}
		fmt.Fprintln(w, colored(line, color))
	}
	fmt.Fprintln(w)
}

func renderAllTables(w io.Writer, sim *core.Simulator) {
	for _, id := range sim.Ids() {
		renderTable(w, sim.Router(id))
	}
}
