package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RostrDating/config"
)

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rostr.log")

	prev := config.Cfg
	defer func() { config.Cfg = prev }()

	config.Cfg.Environment = "staging"
	config.Cfg.ServiceName = "rostr-test"
	config.Cfg.LoggerLevel = "debug"
	config.Cfg.LoggerFormat = "json"
	config.Cfg.LoggerOutputPath = path

	Init()
	Named("kvstore").Debug("probe")
	Sync()
	logClose = nil

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"component":"kvstore"`)
	assert.Contains(t, string(raw), `"service":"rostr-test"`)
	assert.Contains(t, string(raw), `"msg":"probe"`)
}
