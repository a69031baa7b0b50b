package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/lploc94/cloudflare-sentinel/db"
	shttp "github.com/lploc94/cloudflare-sentinel/http"
	"github.com/lploc94/cloudflare-sentinel/logger"
	"github.com/lploc94/cloudflare-sentinel/ml"
	"github.com/lploc94/cloudflare-sentinel/monitoring"
)

type Config struct {
	Model struct {
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
	} `yaml:"model"`
	Database struct {
		Path          string `yaml:"path"`
		LogDetections bool   `yaml:"log_detections"`
	} `yaml:"database"`
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Log logger.Config `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logger
	zlog, err := logger.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// 3. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	zlog.Info("database initialized", zap.String("path", config.Database.Path))

	// 4. Load classifier
	classifier, err := ml.NewClassifier(config.Model.Path)
	if err != nil {
		zlog.Fatal("failed to load model", zap.Error(err))
	}
	zlog.Info("model loaded",
		zap.String("path", config.Model.Path),
		zap.Strings("classes", classifier.Model().Classes))

	// 5. Watch for model updates
	var watcher *ml.ModelWatcher
	if config.Model.Watch {
		watcher, err = ml.NewModelWatcher(classifier, zlog)
		if err != nil {
			zlog.Fatal("failed to watch model file", zap.Error(err))
		}
		go watcher.Start()
		defer watcher.Stop()
	}

	// 6. Start WebSocket hub
	hub := monitoring.NewHub(zlog)
	go hub.Start()
	defer hub.Stop()

	// 7. Wire HTTP handlers
	shttp.SetClassifier(classifier)
	shttp.SetDetectionHub(hub)
	shttp.EnableDetectionLog(config.Database.LogDetections)
	if config.Cache.Size > 0 {
		if err := shttp.InitDecisionCache(config.Cache.Size); err != nil {
			zlog.Fatal("failed to initialize decision cache", zap.Error(err))
		}
	}

	// 8. Start HTTP server
	serverConfig := shttp.DefaultServerConfig()
	if config.Http.Port > 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds > 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}
	server := shttp.NewServer(serverConfig, zlog)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("http server failed", zap.Error(err))
		}
	}()
	zlog.Info("http server started", zap.String("addr", server.Addr()))

	// 9. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	if err := server.Stop(); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
