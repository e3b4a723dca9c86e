package simulate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_ValidFile(t *testing.T) {
	src := `
# starting stocks
euro:1000

buy:(euro:100):(item:1):1
sell:(item:1):(euro:300):1

optimize:(euro;time)
`
	cfg, err := ParseConfig(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Stocks["euro"])
	assert.Equal(t, 0, cfg.Stocks["item"])
	require.Len(t, cfg.Processes, 2)
	assert.Equal(t, []string{"euro", "time"}, cfg.Targets)
}

func TestParseConfig_RejectsUnknownOptimizeTarget(t *testing.T) {
	src := `
euro:1000
buy:(euro:100):(item:1):1
optimize:(gem)
`
	_, err := ParseConfig(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gem")
}

func TestParseConfig_RejectsDuplicateProcessName(t *testing.T) {
	src := `
euro:1000
buy:(euro:100):(item:1):1
buy:(euro:50):(item:1):1
optimize:(euro)
`
	_, err := ParseConfig(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate process name")
}

func TestParseConfig_RejectsNoProcesses(t *testing.T) {
	src := `
euro:1000
optimize:(euro)
`
	_, err := ParseConfig(strings.NewReader(src))
	require.Error(t, err)
}

func TestParseConfig_RejectsProcessAfterOptimize(t *testing.T) {
	src := `
euro:1000
buy:(euro:100):(item:1):1
optimize:(euro)
sell:(item:1):(euro:300):1
`
	_, err := ParseConfig(strings.NewReader(src))
	require.Error(t, err)
}
