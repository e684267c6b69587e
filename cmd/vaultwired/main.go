// Command vaultwired runs the vaultwire file-exchange server.
//
// Configuration comes from a TOML file; every field has a development
// default so the daemon starts with no arguments.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vaultwire"
	"github.com/opd-ai/vaultwire/auth"
)

type config struct {
	Addr       string  `toml:"addr"`
	StorageDir string  `toml:"storage_dir"`
	CertFile   string  `toml:"cert_file"`
	KeyFile    string  `toml:"key_file"`
	SeedFile   string  `toml:"seed_file"`
	AcceptRate float64 `toml:"accept_rate"`
	LogLevel   string  `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		Addr:       ":8444",
		StorageDir: "server_storage",
		LogLevel:   "info",
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Could not load config")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("log_level", cfg.LogLevel).Fatal("Unknown log level")
	}
	logrus.SetLevel(level)

	store := auth.NewStore()
	if cfg.SeedFile != "" {
		if err := auth.LoadSeed(store, cfg.SeedFile); err != nil {
			logrus.WithError(err).Fatal("Could not load user seed file")
		}
	} else {
		auth.SeedDefaults(store)
	}

	srv, err := vaultwire.NewServer(vaultwire.Options{
		Addr:       cfg.Addr,
		CertFile:   cfg.CertFile,
		KeyFile:    cfg.KeyFile,
		StorageDir: cfg.StorageDir,
		AcceptRate: cfg.AcceptRate,
	}, store)
	if err != nil {
		logrus.WithError(err).Fatal("Could not start server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logrus.WithField("signal", sig.String()).Info("Shutting down")
		srv.Close()
	}()

	srv.Serve()
}
