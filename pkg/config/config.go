package config

import (
	"fmt"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"spv-lens/pkg/logging"
)

// Web configures the HTTP service. Every option can also come from the
// environment.
type Web struct {
	Port        string   `short:"p" long:"port" env:"PORT" default:"3000" description:"Port to listen on"`
	DataDir     string   `long:"datadir" env:"SPV_DATA_DIR" description:"Directory for the proof store; empty disables it"`
	Network     string   `long:"network" env:"SPV_NETWORK" default:"mainnet" choice:"mainnet" choice:"testnet" choice:"regtest" choice:"signet" description:"Network used to derive addresses"`
	LogLevel    string   `long:"loglevel" env:"SPV_LOG_LEVEL" default:"info" description:"debug, info, warn or error"`
	LogJSON     bool     `long:"logjson" env:"SPV_LOG_JSON" description:"Write console logs as JSON"`
	LogFile     string   `long:"logfile" env:"SPV_LOG_FILE" description:"Also write rotated JSON logs to this file"`
	CORSOrigins []string `long:"cors-origin" env:"SPV_CORS_ORIGINS" env-delim:"," description:"Allowed CORS origin; repeat for more (default *)"`
	StaticDir   string   `long:"static" env:"SPV_STATIC_DIR" default:"web/build" description:"Frontend build served at /"`
}

// ParseWeb reads a Web config from args and the environment.
func ParseWeb(args []string) (*Web, error) {
	cfg := &Web{}
	parser := flags.NewParser(cfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Web) validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("port required")
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	return nil
}

// Logging returns the logger settings carried by c.
func (c *Web) Logging() logging.Config {
	return logging.Config{
		Level: c.LogLevel,
		JSON:  c.LogJSON,
		File:  c.LogFile,
	}
}

// IsHelp reports whether err is go-flags asking for the usage text.
func IsHelp(err error) bool {
	ferr, ok := err.(*flags.Error)
	return ok && ferr.Type == flags.ErrHelp
}
