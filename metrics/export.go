package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// WriteText writes every series in the Prometheus text style, sorted by key.
// Histograms are reported as _avg and _count over the retained window.
func WriteText(w io.Writer, c *Collector) error {
	all := c.GetMetrics()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		m := all[k]
		labels := formatLabels(m.Labels)

		switch m.Type {
		case "counter", "gauge":
			fmt.Fprintf(&sb, "%s%s %g\n", m.Name, labels, m.Value)
		case "histogram":
			if len(m.History) == 0 {
				continue
			}
			var sum float64
			for _, v := range m.History {
				sum += v
			}
			fmt.Fprintf(&sb, "%s_avg%s %g\n", m.Name, labels, sum/float64(len(m.History)))
			fmt.Fprintf(&sb, "%s_count%s %d\n", m.Name, labels, len(m.History))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%q", k, labels[k])
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// Snapshot is a point-in-time copy of a Collector.
type Snapshot struct {
	Timestamp time.Time         `json:"timestamp"`
	Metrics   map[string]Metric `json:"metrics"`
}

func TakeSnapshot(c *Collector) Snapshot {
	return Snapshot{
		Timestamp: c.now(),
		Metrics:   c.GetMetrics(),
	}
}
