package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/matjam/glpaper/internal/config"
	"github.com/matjam/glpaper/internal/engine"
	"github.com/matjam/glpaper/internal/glrender"
	"github.com/matjam/glpaper/internal/ipc"
	"github.com/spf13/viper"
)

// StartEngine runs the wallpaper daemon on the calling goroutine, which
// must be the locked main thread.
func StartEngine(flags *viper.Viper) {
	log.Infof("StartEngine() started in PID: %d", os.Getpid())

	if os.Getenv("BACKGROUND_PROCESS") == "1" {
		setupRotatingLogger()
	}

	if ipc.NewClient(ipc.SocketPath()).Running() {
		log.Infof("glpaper is already running, exiting")
		os.Exit(0)
	}

	cfg, err := config.New(flags)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	log.Infof("Using config file: %v", cfg.ConfigFileUsed())

	renderer, err := glrender.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	channel := ipc.NewChannel(stop, log.Default())

	eng, err := engine.New(renderer, cfg, channel, engine.WithObserver(channel.SetStatus))
	if err != nil {
		renderer.Cleanup()
		log.Fatal(err)
	}

	bus, err := ipc.StartBusService(channel)
	if err != nil {
		log.Warnf("D-Bus control unavailable: %v", err)
	}

	server := ipc.NewServer(channel, ipc.WithConfigFile(cfg.ConfigFileUsed()))
	served := make(chan struct{})
	go func() {
		defer close(served)
		log.Infof("Starting socket server")
		if err := server.Serve(ctx); err != nil {
			log.Errorf("Socket server error: %v", err)
		}
	}()

	runErr := eng.Run(ctx)

	stop()
	<-served
	if bus != nil {
		bus.Close()
	}
	renderer.Cleanup()

	if runErr != nil {
		log.Fatal(runErr)
	}
	log.Infof("glpaper exited")
}

func setupRotatingLogger() {
	home := os.Getenv("HOME")
	logDir := filepath.Join(home, ".local", "share", "glpaper")
	logPath := filepath.Join(logDir, "glpaper.log")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatalf("failed to create log directory: %v", err)
	}

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
	if log.GetLevel() > log.InfoLevel {
		log.SetLevel(log.InfoLevel)
	}
}
