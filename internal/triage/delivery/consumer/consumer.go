package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/service"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/common"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer manages the consumption of triage tasks from a Redis stream.
type RedisConsumer struct {
	cfg           *config.Config
	redisClient   *redis.Client
	triageService service.TriageService
	logger        *logger.Logger
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	triageService service.TriageService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:           cfg,
		redisClient:   redisClient,
		triageService: triageService,
		logger:        log,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the consumer's task processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.triageService.ProcessTask, common.RedisStreamTriageRequest, c.cfg.Triage.RedisStreamTriageTimeout)

	//handle retry
	c.RegisterTickerHandler(ctx, c.triageService.ProcessRetries, c.cfg.Triage.RedisStreamTriageRetryInterval, c.cfg.Triage.RedisStreamTriageMaxIdleDuration, common.RedisStreamTriageRequest+"-retry")
}

func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.StringField("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}

		}

	})
}

func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.StringField("name", name),
		logger.DurationField("interval", interval),
		logger.DurationField("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.StringField("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.StringField("name", name))
				return
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
