package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"tezbot/app/client/gemini"
	"tezbot/app/client/speechkit"
	"tezbot/app/client/telegram"
	"tezbot/app/client/translate"
	"tezbot/app/client/weather"
	"tezbot/app/config"
	"tezbot/app/service/engine"
	"tezbot/app/service/fun"
	"tezbot/app/service/persona"
	"tezbot/app/service/quizgen"
	"tezbot/app/service/router"
	"tezbot/app/service/session"
	"tezbot/app/service/stats"
	"tezbot/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, telegram.NewClient)
	do.Provide(di, gemini.NewClient)
	do.Provide(di, speechkit.NewClient)
	do.Provide(di, translate.NewClient)
	do.Provide(di, weather.NewClient)
	do.Provide(di, session.New)
	do.Provide(di, persona.New)
	do.Provide(di, fun.New)
	do.Provide(di, quizgen.New)
	do.Provide(di, stats.New)
	do.Provide(di, router.New)
	do.Provide(di, engine.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*engine.Service](di).Run(appCtx)

	<-appCtx.Done()
}
