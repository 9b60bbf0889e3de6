/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/handler"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/metrics"
	"github.com/tieubaoca/docqa-be/service"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Long:  `Starts the HTTP and websocket API on the configured port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.LogLevel != logger.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		app := fx.New(
			fx.Supply(cfg, log),
			fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
				return &fxevent.ZapLogger{Logger: log.Zap}
			}),
			serverModule,
		)
		app.Run()
		return app.Err()
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}

var serverModule = fx.Module("server",
	fx.Provide(
		metrics.NewMetrics,
		provideVectorStore,
		provideAIClients,
		provideQuestionLogger,
		newFetcher,
		newQAService,
		newNamespaceService,
		func(ns *service.NamespaceService, log *logger.Logger) *service.WebSocketService {
			return service.NewWebSocketService(ns, log)
		},
		func(ns *service.NamespaceService, log *logger.Logger) *handler.NamespaceHandler {
			return handler.NewNamespaceHandler(ns, log)
		},
		handler.NewWebSocketHandler,
		provideRouter,
	),
	fx.Invoke(registerServerLifecycle),
)

func provideVectorStore(lc fx.Lifecycle, cfg *config.Config, log *logger.Logger) (database.VectorStore, error) {
	store, closeStore, err := newVectorStore(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.EnsureCollection(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return closeStore()
		},
	})
	return store, nil
}

type aiClients struct {
	fx.Out

	Chat     service.AIService
	Embedder service.Embedder
}

func provideAIClients(lc fx.Lifecycle, cfg *config.Config) (aiClients, error) {
	chat, embedder, closeAI, err := newAIClients(cfg)
	if err != nil {
		return aiClients{}, err
	}
	lc.Append(fx.StopHook(closeAI))
	return aiClients{Chat: chat, Embedder: embedder}, nil
}

// provideQuestionLogger yields a nil logger when MongoDB is not configured.
func provideQuestionLogger(lc fx.Lifecycle, cfg *config.Config, log *logger.Logger) (service.QuestionLogger, error) {
	repo, client, err := newQuestionRepo(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		log.Info("MONGODB_URI not set, questions will not be recorded", nil)
		return nil, nil
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
	return repo, nil
}

func provideRouter(cfg *config.Config, ns *handler.NamespaceHandler, ws *handler.WebSocketHandler, m *metrics.Metrics, log *logger.Logger) *gin.Engine {
	return handler.NewRouter(handler.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
	}, ns, ws, m, log)
}

func registerServerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, router *gin.Engine, log *logger.Logger) {
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, mutating routes are unauthenticated", nil)
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			log.Info("Starting server", nil, map[string]interface{}{"address": server.Addr})
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Server error", err)
					shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server", nil)
			err := server.Shutdown(ctx)
			log.Sync()
			return err
		},
	})
}
