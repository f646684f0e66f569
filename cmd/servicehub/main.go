package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/servicehub/servicehub/config"
	"github.com/servicehub/servicehub/internal/app"
	"github.com/servicehub/servicehub/internal/restapi"
	"github.com/servicehub/servicehub/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema")
	debug    = flag.Bool("x", false, "debug mode")
)

var (
	BuildVersion = "dev"
)

func printVersion() {
	fmt.Printf("servicehub %s\n", BuildVersion)
}

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		printVersion()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	if *debug {
		cfg.System.Debug = true
		cfg.Database.Debug = true
	}
	cfg.InitDirs()

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		os.Exit(0)
	}

	server := webserver.Init(application)
	restapi.Init()

	go func() {
		if err := server.Start(cfg.WebListen()); err != nil {
			zap.S().Fatalf("web server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.S().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zap.S().Errorf("shutdown error: %v", err)
	}
}
