package main

import (
	"context"
	"flag"
	golog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/nicolagi/kvfront/server"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	defaultConfigFile := os.ExpandEnv("$HOME/lib/kvfront/kvfront.config")
	configFile := flag.String("config", defaultConfigFile, "location of configuration file")
	flag.Parse()

	config, err := loadConfig(*configFile)
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"path": *configFile,
		}).Fatal("Could not load configuration")
	}

	config.applyDefaultsForMissingProperties()

	if config.Debug {
		log.SetLevel(log.DebugLevel)
	}
	golog.SetOutput(log.StandardLogger().Writer())

	if err := agent.Listen(agent.Options{
		ShutdownCleanup: true,
	}); err != nil {
		log.WithField("err", err).Warn("Could not start gops agent")
	} else {
		defer agent.Close()
	}

	store, cleanup, err := openStore(&config.Backend)
	defer cleanup()
	if err != nil {
		cleanup()
		log.WithFields(log.Fields{
			"err":     err,
			"backend": config.Backend.Type,
		}).Fatal("Could not open backend")
	}

	srv := server.New(
		server.WithAddress(config.Address),
		server.WithStore(store),
		server.WithMaxValueSize(config.MaxValueSize),
		server.WithCORSOrigins(config.CORSOrigins...),
	)
	addr, err := srv.Listen()
	if err != nil {
		cleanup()
		log.WithField("err", err).Fatal("Could not listen")
	}
	log.WithField("addr", addr).Info("Listening")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Serve)
	g.Go(func() error {
		// Either a signal arrived or Serve failed.
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.WithField("err", err).Error("Server stopped")
	}
}
