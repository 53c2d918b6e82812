package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seabattle/internal/api/auth"
	httpapi "seabattle/internal/api/http"
	"seabattle/internal/api/ws"
	"seabattle/internal/bot"
	"seabattle/internal/config"
	"seabattle/internal/player"
	"seabattle/internal/session"
	"seabattle/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func openStore(cfg config.Config) (store.Store, func(), error) {
	if cfg.DBPath == "" {
		log.Info("DB_PATH not set, keeping users in memory")
		return store.NewMemoryStore(), func() {}, nil
	}
	sq, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return sq, func() { _ = sq.Close() }, nil
}

func main() {
	cfg := config.Load()
	cfg.SetupLogging()
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	fleet, err := cfg.Fleet()
	if err != nil {
		log.WithError(err).Fatal("invalid fleet configuration")
	}
	if _, err := bot.NewPolicy(cfg.Bot.Policy, nil); err != nil {
		log.WithError(err).Fatal("invalid bot configuration")
	}

	users, closeStore, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("can't open store")
	}
	defer closeStore()

	cookies := auth.NewCookies(cfg.SessionSecret)
	hub := ws.NewHub(users, cookies, cfg.AllowedOrigin)
	svc := session.NewService(hub, users, session.Options{
		Fleet:   fleet,
		Rules:   cfg.Rules,
		BotName: cfg.Bot.Name,
		NewPolicy: func() player.Policy {
			p, _ := bot.NewPolicy(cfg.Bot.Policy, rand.New(rand.NewSource(time.Now().UnixNano())))
			return p
		},
	})
	hub.Attach(svc)
	driver := bot.NewDriver(svc, cfg.Bot.Interval)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(users, cookies, hub),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return driver.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped")
		closeStore()
		os.Exit(1)
	}
	log.Info("bye")
}
