package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/viper"

	"github.com/kitsunet/livepaper/internal/cli/cmd/utils"
	"github.com/kitsunet/livepaper/internal/config"
	"github.com/kitsunet/livepaper/internal/engine"
	"github.com/kitsunet/livepaper/internal/ipc"
	"github.com/kitsunet/livepaper/internal/monitor"
	"github.com/kitsunet/livepaper/internal/pausepolicy"
	"github.com/kitsunet/livepaper/internal/platform"
	"github.com/kitsunet/livepaper/internal/render"
)

// Exit codes, so scripts and service managers can tell a rejected config
// from a runtime failure.
const (
	ExitConfig  = 2
	ExitRuntime = 3
)

// StartEngine resolves the configuration, provisions the display backend
// and drives the engine loop until it is stopped. With --background the
// foreground process forks and returns once the daemon is up.
func StartEngine() {
	if viper.GetBool("background") {
		ctx := &daemon.Context{Umask: 0o27}
		child, err := ctx.Reborn()
		if err != nil {
			log.Errorf("daemonizing failed: %v", err)
			os.Exit(ExitRuntime)
		}
		if child != nil {
			log.Infof("livepaper running in the background, PID %d", child.Pid)
			return
		}
		defer ctx.Release()
		setupRotatingLogger()
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	log.Infof("livepaper starting in PID %d", os.Getpid())

	if report, err := ipc.SendStatus(); err == nil {
		log.Infof("livepaper is already running (%d outputs), exiting", len(report.Outputs))
		return
	}

	cfg, err := config.FromViper()
	if err != nil {
		log.Errorf("configuration rejected: %v", err)
		os.Exit(ExitConfig)
	}
	cfg.Video = utils.CanonicalPath(cfg.Video)
	cfg.FallbackVideo = utils.CanonicalPath(cfg.FallbackVideo)
	cfg.MapFile = utils.CanonicalPath(cfg.MapFile)

	os.Exit(runEngine(cfg))
}

// runEngine owns the backend lifetimes so deferred cleanup runs before
// the process exits.
func runEngine(cfg config.Settings) int {
	registry := provisionRegistry()
	defer registry.Close()
	device := provisionDevice()
	defer device.Close()

	var pauseCh <-chan bool
	if cfg.PauseEnabled {
		poller := pausepolicy.NewPoller(pausepolicy.NewSteamDetector(cfg.PauseDebug), cfg.PausePollInterval)
		poller.Start()
		defer poller.Stop()
		pauseCh = poller.Changes()
	}

	eng := engine.New(cfg, registry, device, pauseCh)
	go func() {
		if err := ipc.Start(eng); err != nil {
			log.Errorf("control channel failed: %v", err)
		}
	}()

	err := eng.Run()
	os.Remove(ipc.SocketPath())
	if err != nil {
		log.Errorf("engine failed: %v", err)
		return ExitRuntime
	}
	log.Info("livepaper exited")
	return 0
}

func provisionRegistry() monitor.Registry {
	registry, err := monitor.NewX11Registry()
	if err != nil {
		log.Warnf("display backend unavailable (%v), using stub outputs", err)
		return monitor.NewStubRegistry()
	}
	return registry
}

func provisionDevice() render.Device {
	device, err := platform.NewDevice()
	if err != nil {
		log.Warnf("render backend unavailable (%v), frames will be decoded but not displayed", err)
		return render.NewStubDevice(16384)
	}
	return device
}

func setupRotatingLogger() {
	home := os.Getenv("HOME")
	logDir := filepath.Join(home, ".local", "share", "livepaper")
	logPath := filepath.Join(logDir, "livepaper.log")

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
	log.SetLevel(log.InfoLevel)
}
