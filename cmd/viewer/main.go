package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"runtime"

	"geoview/internal/config"
	"geoview/internal/logging"
	"geoview/internal/scene"
	"geoview/internal/viewer/extensions/camerasync"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "geoview.toml", "path to the TOML config file")
	scenePath := flag.String("scene", "", "scene JSON to load at startup")
	logLevel := flag.String("log", "", "log level override (debug, info, warn, error)")
	writeConfig := flag.Bool("write-config", false, "write the effective config to -config and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		closer.Fatalln(err)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.Log.Level),
	})))
	config.Apply(cfg)

	if *writeConfig {
		if err := cfg.Save(*configPath); err != nil {
			closer.Fatalln(err)
		}
		return
	}

	var root *scene.Object
	if *scenePath != "" {
		root, err = scene.DecodeFile(*scenePath)
		if err != nil {
			closer.Fatalln(err)
		}
	}

	var hubServer *http.Server
	if cfg.Sync.Enabled && cfg.Sync.Listen != "" {
		hub := camerasync.NewHub()
		mux := http.NewServeMux()
		mux.Handle("/sync", hub)
		hubServer = &http.Server{Addr: cfg.Sync.Listen, Handler: mux}
		go func() {
			if err := hubServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Logger().Warn("camera sync hub stopped", "err", err)
			}
		}()
		closer.Bind(func() {
			hub.Close()
			hubServer.Close()
		})
		logging.Logger().Info("camera sync hub listening", "addr", cfg.Sync.Listen)
	}

	if err := glfw.Init(); err != nil {
		closer.Fatalln(err)
	}

	// Window setup
	window, err := setupWindow(cfg.Window)
	if err != nil {
		glfw.Terminate()
		closer.Fatalln(err)
	}

	app, err := newApp(window, cfg)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		closer.Fatalln(err)
	}
	if root != nil {
		app.loader.Load(root, nil)
	}

	// SIGINT and friends stop the loop; GL teardown stays on this thread.
	done := make(chan struct{})
	closer.Bind(func() {
		app.stop.Store(true)
		<-done
	})

	app.run()
	app.dispose()
	window.Destroy()
	glfw.Terminate()
	close(done)
	closer.Close()
}
