package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"medialookup/internal/config"
	"medialookup/internal/logging"
)

type commandContext struct {
	configFlag   *string
	jsonFlag     *bool
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		jsonFlag:     jsonFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// newLogger builds the command logger. Log lines go to the command's stderr,
// plus logging.file when configured.
func (c *commandContext) newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level = strings.TrimSpace(*c.logLevelFlag)
	}
	if cfg.Logging.File == "" {
		return logging.New(logging.Options{
			Level:  level,
			Format: cfg.Logging.Format,
			Writer: cmd.ErrOrStderr(),
		})
	}
	effective := *cfg
	effective.Logging.Level = level
	return logging.NewFromConfig(&effective)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
