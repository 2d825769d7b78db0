package dependency

import (
	"github.com/promptroom/api/infrastructure/cache"
	"github.com/promptroom/api/infrastructure/persistence/repository"
)

func (c *Container) initRepositories() {
	redisClient := cache.GetRedis()

	c.HostRepo = repository.NewHostRepository(redisClient)
	c.LeaseRepo = repository.NewLeaseRepository(redisClient)
	c.MessageRepo = repository.NewMessageRepository(redisClient)
	c.BalanceRepo = repository.NewBalanceRepository(redisClient)

	c.Logger.Info("Repositories initialized successfully")
}
