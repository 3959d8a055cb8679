package main

import (
	"context"
	"net/http"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	appConfig "github.com/dmick/jamtools/config"
	"github.com/dmick/jamtools/controller"
	"github.com/dmick/jamtools/handlers"
	"github.com/dmick/jamtools/sentry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}
	appConfig.NewConfig()
	setupLogging(appConfig.Config.Options.LogLevel)
	sentry.Init(appConfig.Config.Options.SentryDSN, appConfig.Config.Options.Release)

	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(level string) {
	log.SetFormatter(&nested.Formatter{
		HideKeys:    true,
		FieldsOrder: []string{"module", "function"},
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown LOG_LEVEL %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func run(ctx context.Context) error {
	ctrl, err := controller.NewController(ctx, appConfig.Config, controller.Deps{})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	router := gin.Default()
	router.Use(sentry.GetSentryGin())
	handlers.NewManager(ctrl.Fetcher, ctrl.Sets, ctrl.DB).Register(router)

	port := appConfig.Config.Server.Port
	if port == "" {
		port = "8080"
	}
	log.Infof("Starting server on :%s", port)
	return http.ListenAndServe(":"+port, router)
}
