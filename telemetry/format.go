package telemetry

import (
	"fmt"
	"io"
	"time"
)

// writeTimingTree renders the timing tree:
//
//	Import: 125ms
//	├─ Parse statements: 85ms
//	│  └─ bank/2024-01.csv: 45ms
//	└─ Write journals: 40ms
func writeTimingTree(w io.Writer, root *timerNode) {
	_, _ = fmt.Fprintf(w, "%s: %s\n", root.name, formatDuration(root.end.Sub(root.start)))
	for i, child := range root.children {
		writeNode(w, child, "", i == len(root.children)-1)
	}
}

func writeNode(w io.Writer, node *timerNode, prefix string, isLast bool) {
	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, node.name, formatDuration(node.end.Sub(node.start)))

	for i, child := range node.children {
		writeNode(w, child, prefix+extension, i == len(node.children)-1)
	}
}

// formatDuration shows milliseconds below one second, seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
