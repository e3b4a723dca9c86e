package common

import (
	"fmt"
	"sort"
)

// StdoutLogger writes Log calls to stdout as "[level] message key=value ...".
// The teacher's own CLI surface favors fmt.Println output over a structured
// logging library, so this follows that rather than reaching for one.
type StdoutLogger struct{}

func (StdoutLogger) Log(level, message string, metadata map[string]interface{}) {
	fmt.Printf("[%s] %s%s\n", level, message, formatMetadata(metadata))
}

func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for _, k := range keys {
		out += fmt.Sprintf(" %s=%v", k, metadata[k])
	}
	return out
}
