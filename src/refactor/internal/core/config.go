package core

import (
	"fmt"
	"os"
	"strings"

	uberconfig "go.uber.org/config"
	"go.uber.org/fx"
)

// ConfigModule provides the configuration provider.
var ConfigModule = fx.Options(
	fx.Provide(NewConfig),
)

// ConfigEnvVar names an optional YAML file merged over the compiled defaults.
const ConfigEnvVar = "REFACTOR_LSP_CONFIG"

const _defaultYAML = `
logging:
  level: info
  encoding: console
  development: false

workspace:
  root: "${REFACTOR_WORKSPACE:.}"

langserver:
  command: pyright-langserver
  args:
    - --stdio
  requestTimeoutSeconds: 30
  shutdownGraceSeconds: 5
  notificationQueueSize: 64

docsync:
  maxFileSizeBytes: 4194304
  watchExternalChanges: false
`

// NewConfig builds the configuration provider from compiled defaults plus an
// optional override file named by REFACTOR_LSP_CONFIG.
func NewConfig() (uberconfig.Provider, error) {
	opts := []uberconfig.YAMLOption{
		uberconfig.Source(strings.NewReader(_defaultYAML)),
		uberconfig.Expand(os.LookupEnv),
	}

	if path := os.Getenv(ConfigEnvVar); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		opts = append(opts, uberconfig.File(path))
	}

	provider, err := uberconfig.NewYAML(opts...)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return provider, nil
}
