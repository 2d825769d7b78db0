package dependency

import (
	balanceUseCase "github.com/promptroom/api/application/usecases/balance"
	hostUseCase "github.com/promptroom/api/application/usecases/host"
	messageUseCase "github.com/promptroom/api/application/usecases/message"
)

func (c *Container) initUseCases() {
	c.HostUC = hostUseCase.NewHostUseCase(c.HostRepo, c.LeaseRepo, c.EventPublisher, c.Logger, c.Config)
	c.MessageUC = messageUseCase.NewMessageUseCase(
		c.MessageRepo,
		c.HostRepo,
		c.BalanceRepo,
		c.InferenceClient,
		c.Facilitator,
		c.EventPublisher,
		c.MetricsManager,
		c.Logger,
		c.Config,
	)
	c.BalanceUC = balanceUseCase.NewBalanceUseCase(c.BalanceRepo, c.Logger)

	c.Logger.Info("Use cases initialized successfully")
}
