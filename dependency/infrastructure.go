package dependency

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/promptroom/api/infrastructure/cache"
	"github.com/promptroom/api/infrastructure/events"
	"github.com/promptroom/api/infrastructure/inference"
	"github.com/promptroom/api/infrastructure/jobs"
	"github.com/promptroom/api/infrastructure/metrics"
	"github.com/promptroom/api/infrastructure/payments"
	"github.com/promptroom/api/infrastructure/sign"
)

func (c *Container) initInfrastructure() error {
	c.MetricsManager = metrics.NewManager()
	c.Logger.Info("Metrics initialized successfully")

	c.EventPublisher = events.NewPublisher(cache.GetRedis())

	c.InferenceClient = inference.NewClient(c.Config)

	facilitator, err := c.buildFacilitator()
	if err != nil {
		return err
	}
	c.Facilitator = facilitator

	return nil
}

// StartBackgroundJobs begins the log retention sweep. Called once from main
// after the container is fully built.
func (c *Container) StartBackgroundJobs(ctx context.Context) {
	c.LogTrimJob = jobs.NewLogTrimJob(c.MessageRepo, c.Logger, 10*time.Minute, c.Config.Room.MessageWindow)

	go func() {
		c.Logger.Info("Starting background jobs...")
		c.LogTrimJob.Start(ctx)
	}()
}

func (c *Container) buildFacilitator() (payments.Facilitator, error) {
	switch c.Config.Payments.Mode {
	case "", "demo":
		c.Logger.Info("Using demo payment facilitator")
		return payments.NewDemoFacilitator(), nil
	case "http":
		signer, err := sign.NewHMACSigner([]byte(c.Config.Payments.SigningKey))
		if err != nil {
			return nil, fmt.Errorf("error initializing payment signer: %w", err)
		}
		c.Logger.Info("Using HTTP payment facilitator",
			zap.String("url", c.Config.Payments.FacilitatorURL),
		)
		return payments.NewHTTPFacilitator(c.Config, signer), nil
	default:
		return nil, fmt.Errorf("unknown payments mode %q", c.Config.Payments.Mode)
	}
}
