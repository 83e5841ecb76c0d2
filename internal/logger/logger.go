package logger

import (
	"encoding/json"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mi-ops/ansible-ovirt-inventory/pkg/types"
)

// New creates a logger. Everything goes to stderr: stdout is reserved for the inventory document.
func New(level string) (types.InventoryLogger, error) {
	levelEncoder := "capital"
	if isatty.IsTerminal(os.Stderr.Fd()) {
		levelEncoder = "capitalColor"
	}

	var cfg zap.Config
	cfgJSON := []byte(`{
		"development": false,
	  "level": "` + level + `",
	  "encoding": "console",
	  "outputPaths": ["stderr"],
	  "errorOutputPaths": ["stderr"],
	  "encoderConfig": {
			"timeKey": "timestamp",
			"timeEncoder": "iso8601",
	    "messageKey": "message",
	    "levelKey": "level",
	    "levelEncoder": "` + levelEncoder + `"
	  }
	}`)

	if err := json.Unmarshal(cfgJSON, &cfg); err != nil {
		return nil, errors.Wrap(err, "json unmarshalling error")
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "logger building error")
	}

	return logger.Sugar(), nil
}
