package main

import (
	"os"

	"github.com/neovim/go-client/nvim/plugin"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"go-monaco-bridge/internal/config"
	"go-monaco-bridge/internal/host"
)

var log = commonlog.GetLogger("monaco")

// Load settings, set up logging, then hand the connection to Neovim.
// Neovim speaks msgpack on stdout, so logs go to stderr or the log file.
func main() {
	path := os.Getenv("GO_MONACO_CONFIG")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		commonlog.Configure(0, nil)
		log.Criticalf("load config: %s", err)
		os.Exit(1)
	}

	if cfg.Log.File != "" {
		commonlog.Configure(cfg.Log.Verbosity, &cfg.Log.File)
	} else {
		commonlog.Configure(cfg.Log.Verbosity, nil)
	}

	plugin.Main(func(p *plugin.Plugin) error {
		log.Info("[go-monaco] registering handlers")
		return host.Register(p, cfg)
	})
}
