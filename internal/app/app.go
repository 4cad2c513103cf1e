package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/kafka"
	"github.com/ragzy-ai/ragzy-api/internal/repo/backend"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
	"github.com/ragzy-ai/ragzy-api/internal/repo/providers"
	"github.com/ragzy-ai/ragzy-api/internal/repo/redisstore"
	"github.com/ragzy-ai/ragzy-api/internal/repo/sendpulse"
	"github.com/ragzy-ai/ragzy-api/internal/scheduler"
	"github.com/ragzy-ai/ragzy-api/internal/server"
	"github.com/ragzy-ai/ragzy-api/internal/setup"
	"github.com/ragzy-ai/ragzy-api/internal/usecase"
	"github.com/ragzy-ai/ragzy-api/pkg/logger"
)

// Invoke builds the application graph and runs funcs against it.
func Invoke(funcs ...any) *fx.App {
	conf := config.MustLoad()
	if err := logger.Init(conf.Log.Level, conf.Log.Format); err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	log := logger.MustNamed("app")
	log.Debugw("config loaded", "server", conf.Server, "kafka_enabled", conf.Kafka.Enabled)

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Supply(conf),
		repositories,
		clients,
		usecases,
		fx.Provide(
			server.NewEcho,
			kafka.NewChatEventHandler,
			kafka.NewConsumer,
			scheduler.New,
			setup.NewSeeder,
		),
		fx.Invoke(funcs...),
	)
}

// RunOnce starts the graph, runs funcs and stops it again. It backs the
// short lived subcommands.
func RunOnce(ctx context.Context, funcs ...any) error {
	a := Invoke(funcs...)
	if err := a.Err(); err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return err
	}
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	return a.Stop(stopCtx)
}

var repositories = fx.Options(
	fx.Provide(
		newMongoDB,
		mongodb.NewWorkspaceRepository,
		mongodb.NewMemberRepository,
		mongodb.NewInviteRepository,
		mongodb.NewWidgetRepository,
		mongodb.NewConversationRepository,
		mongodb.NewChatMessageRepository,
		mongodb.NewAgentRepository,
		mongodb.NewKnowledgeBaseRepository,
		mongodb.NewAgentKnowledgeRepository,
		mongodb.NewConnectionRepository,
		mongodb.NewMigrationRepository,
	),
)

var clients = fx.Options(
	fx.Provide(
		newRedis,
		redisstore.NewNotificationQueue,
		redisstore.NewRateLimiter,
		newPublisher,
		newCipher,
		providers.NewDefaultRegistry,
		fx.Annotate(
			backend.NewClient,
			fx.As(fx.Self()),
			fx.As(new(usecase.IntegrationBackend)),
			fx.As(new(usecase.OAuthBackend)),
			fx.As(new(usecase.KnowledgeBackend)),
			fx.As(new(usecase.KnowledgeRemover)),
		),
		fx.Annotate(
			sendpulse.NewClient,
			fx.As(new(usecase.EmailSender)),
		),
	),
)

var usecases = fx.Options(
	fx.Provide(
		usecase.NewAuthUseCase,
		usecase.NewWorkspaceUseCase,
		usecase.NewKnowledgeUseCase,
		usecase.NewProxyUseCase,
		usecase.NewOAuthUseCase,
		fx.Annotate(
			usecase.NewEmailUseCase,
			fx.As(fx.Self()),
			fx.As(new(usecase.MessageNotifier)),
			fx.As(new(usecase.WorkspaceMailer)),
		),
		fx.Annotate(
			usecase.NewNotificationUseCase,
			fx.As(new(usecase.MessageNotificationHandler)),
			fx.As(new(scheduler.DueProcessor)),
		),
		fx.Annotate(
			usecase.NewChatUseCase,
			fx.As(fx.Self()),
			fx.As(new(usecase.WidgetGetter)),
			fx.As(new(kafka.MessageSender)),
		),
		fx.Annotate(
			usecase.NewAgentUseCase,
			fx.As(fx.Self()),
			fx.As(new(usecase.AgentGetter)),
		),
		fx.Annotate(
			usecase.NewConnectionUseCase,
			fx.As(fx.Self()),
			fx.As(new(usecase.TokenSource)),
			fx.As(new(usecase.ConnectionRemover)),
			fx.As(new(usecase.ConnectionSaver)),
		),
	),
)
