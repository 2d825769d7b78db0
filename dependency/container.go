package dependency

import (
	"fmt"

	balanceUseCase "github.com/promptroom/api/application/usecases/balance"
	hostUseCase "github.com/promptroom/api/application/usecases/host"
	messageUseCase "github.com/promptroom/api/application/usecases/message"
	"github.com/promptroom/api/domain/repository"
	"github.com/promptroom/api/infrastructure/cache"
	"github.com/promptroom/api/infrastructure/config"
	"github.com/promptroom/api/infrastructure/events"
	"github.com/promptroom/api/infrastructure/inference"
	"github.com/promptroom/api/infrastructure/jobs"
	"github.com/promptroom/api/infrastructure/logger"
	"github.com/promptroom/api/infrastructure/metrics"
	"github.com/promptroom/api/infrastructure/payments"
	"github.com/promptroom/api/presentation/controllers/balance"
	"github.com/promptroom/api/presentation/controllers/message"
	"github.com/promptroom/api/presentation/controllers/room"
	"github.com/promptroom/api/presentation/middlewares"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger

	MetricsManager metrics.Manager
	EventPublisher *events.Publisher

	InferenceClient *inference.Client
	Facilitator     payments.Facilitator

	HostRepo    repository.HostRepository
	LeaseRepo   repository.LeaseRepository
	MessageRepo repository.MessageRepository
	BalanceRepo repository.BalanceRepository

	HostUC    hostUseCase.HostUseCase
	MessageUC messageUseCase.MessageUseCase
	BalanceUC balanceUseCase.BalanceUseCase

	RoomController    room.RoomController
	MessageController message.MessageController
	BalanceController balance.BalanceController

	ETagStore  middlewares.ETagStore
	LogTrimJob *jobs.LogTrimJob
}

func NewContainer() (*Container, error) {
	c := &Container{}

	c.Config = config.GetConfig()

	loggerInstance, err := logger.NewLogger(c.Config)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	c.Logger = loggerInstance

	c.Logger.Info("Initializing dependencies")
	if err := cache.InitRedis(c.Config); err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	c.initRepositories()

	c.initUseCases()

	c.initMiddleware()

	c.initControllers()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}
