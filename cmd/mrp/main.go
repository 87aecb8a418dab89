package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"mrp/api"
	"mrp/config"
	"mrp/store"
)

func main() {
	cfgPath := os.Getenv("MRP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	cfg.SetupLogging()

	ctx := context.Background()

	st, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to DB")
	}

	defer st.Close()

	logrus.WithField("driver", cfg.Database.Driver).Info("database connected")

	err = st.EnsureSchema(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to ensure schema")
	}

	ws := api.New(st)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.WithField("addr", cfg.BindAddr).Info("listening")
		err := ws.Listen(cfg.BindAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("failed to start web server")
		}
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	err = ws.Shutdown()
	if err != nil {
		logrus.WithError(err).Error("failed to shutdown web server")
	}

	wg.Wait()
}
