package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/common"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/telegram"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

// Accepted headlines kept for the next digest flush.
const maxDigestEntries = 500

// TriageService consumes headline requests from the triage stream, runs the
// pipeline and publishes accepted headlines downstream.
type TriageService interface {
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
	Evaluate(ctx context.Context, h *dto.Headline) (*dto.PipelineResult, error)
	PublishRequest(ctx context.Context, req *dto.StreamDataTriageRequest) error
	FlushDigest()
}

type triageService struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	pipeline    TriagePipeline
	telegramBot telegram.Notifier

	mu     sync.Mutex
	digest []dto.TriageDigestEntry
}

// NewTriageService creates a TriageService.
func NewTriageService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	pipeline TriagePipeline,
	telegramBot telegram.Notifier,
) TriageService {
	return &triageService{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		pipeline:    pipeline,
		telegramBot: telegramBot,
	}
}

// Evaluate runs a single headline through the pipeline.
func (s *triageService) Evaluate(ctx context.Context, h *dto.Headline) (*dto.PipelineResult, error) {
	return s.pipeline.Evaluate(ctx, h)
}

// PublishRequest enqueues a headline onto the triage request stream.
func (s *triageService) PublishRequest(ctx context.Context, req *dto.StreamDataTriageRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal triage request: %w", err)
	}
	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamTriageRequest,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		s.log.Error("Failed to enqueue triage request", logger.ErrorField(err))
		return fmt.Errorf("failed to enqueue triage request: %w", err)
	}
	return nil
}

// ProcessTask dequeues and evaluates a single headline request.
func (s *triageService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamTriageRequest, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
	}).Result()
	if err != nil {
		// Ignore context cancellation and timeout errors, as they are expected during shutdown or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]

	// The headline data is expected to be a JSON string in the 'payload' field.
	payload, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		if err := s.AckNDel(ctx, common.RedisStreamTriageRequest, message.ID); err != nil {
			s.log.Error("Failed to acknowledge malformed message", logger.ErrorField(err), logger.Field("message_id", message.ID))
		}
		return
	}

	var streamData dto.StreamDataTriageRequest
	if err := json.Unmarshal([]byte(payload), &streamData); err != nil {
		s.log.Error("Failed to unmarshal triage request", logger.ErrorField(err), logger.Field("message_id", message.ID))
		if err := s.AckNDel(ctx, common.RedisStreamTriageRequest, message.ID); err != nil {
			s.log.Error("Failed to acknowledge malformed message", logger.ErrorField(err), logger.Field("message_id", message.ID))
		}
		return
	}

	if err := s.processHeadline(ctx, &streamData); err != nil {
		// Malformed input will not improve on retry.
		if errors.Is(err, ErrMalformedInput) {
			s.log.Error("Dropping malformed headline", logger.ErrorField(err), logger.Field("message_id", message.ID))
			if err := s.AckNDel(ctx, common.RedisStreamTriageRequest, message.ID); err != nil {
				s.log.Error("Failed to acknowledge malformed message", logger.ErrorField(err), logger.Field("message_id", message.ID))
			}
			return
		}
		// Left pending so the retry handler can claim it.
		s.log.Error("Failed to evaluate headline", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	if err := s.AckNDel(ctx, common.RedisStreamTriageRequest, message.ID); err != nil {
		s.log.Error("Failed to acknowledge triage request", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	s.log.Debug("Triage request processed", logger.Field("message_id", message.ID))
}

// ProcessRetries claims idle pending messages and retries them. Once the
// retry count is exceeded the message is dropped and an alert is sent.
func (s *triageService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamTriageRequest,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Triage.RedisStreamTriageMaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to claim triage request on retry", logger.ErrorField(err))
		return
	}

	if len(msgs) == 0 {
		s.log.Debug("Retry No pending messages found", logger.StringField("stream", common.RedisStreamTriageRequest))
		return
	}

	s.log.Info("Found pending messages", logger.StringField("stream", common.RedisStreamTriageRequest))

	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamTriageRequest,
		Group:  common.RedisStreamGroup,
		Start:  msgs[0].ID,
		End:    msgs[0].ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}

	if len(pendingInfo) == 0 {
		s.log.Warn("pending msg not found, but exist on xautoclaim",
			logger.StringField("stream", common.RedisStreamTriageRequest),
			logger.StringField("message_id", msgs[0].ID))
		return
	}

	msg := msgs[0]
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", msg.ID))
		return
	}

	var streamData dto.StreamDataTriageRequest
	if err := json.Unmarshal([]byte(payload), &streamData); err != nil {
		s.log.Error("Failed to unmarshal triage request", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		return
	}

	if pendingInfo[0].RetryCount >= int64(s.cfg.Triage.RedisStreamTriageMaxRetry) {
		s.log.Error("pending msg retry count exceeded",
			logger.StringField("stream", common.RedisStreamTriageRequest),
			logger.StringField("message_id", msg.ID),
			logger.StringField("headline", streamData.Headline),
			logger.IntField("retry_count", int(pendingInfo[0].RetryCount)),
			logger.IntField("max_retry", s.cfg.Triage.RedisStreamTriageMaxRetry),
		)
		msgTelegram := telegram.FormatErrorAlertMessage(
			utils.TimeNowET(),
			"Triage retry count exceeded",
			fmt.Sprintf("headline could not be evaluated after %d retries", pendingInfo[0].RetryCount),
			streamData.Headline,
		)
		if err := s.telegramBot.SendMessage(msgTelegram); err != nil {
			s.log.Error("Failed to send telegram message retry exceeded", logger.ErrorField(err), logger.StringField("headline", streamData.Headline))
		}
		if err := s.AckNDel(ctx, common.RedisStreamTriageRequest, msg.ID); err != nil {
			s.log.Error("Failed to acknowledge exhausted triage request", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		}
		return
	}

	if err := s.processHeadline(ctx, &streamData); err != nil {
		if errors.Is(err, ErrMalformedInput) {
			s.log.Error("Dropping malformed headline on retry", logger.ErrorField(err), logger.Field("message_id", msg.ID))
			if err := s.AckNDel(ctx, common.RedisStreamTriageRequest, msg.ID); err != nil {
				s.log.Error("Failed to acknowledge malformed message", logger.ErrorField(err), logger.Field("message_id", msg.ID))
			}
			return
		}
		s.log.Error("Failed to evaluate headline on retry", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		return
	}

	if err := s.AckNDel(ctx, common.RedisStreamTriageRequest, msg.ID); err != nil {
		s.log.Error("Failed to acknowledge triage request", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		return
	}
	s.log.Info("Retry triage request processed successfully", logger.StringField("headline", streamData.Headline))
}

// AckNDel acknowledges and deletes a processed stream message.
func (s *triageService) AckNDel(ctx context.Context, streamName string, messageID string) error {
	if err := s.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.log.Error("Failed to acknowledge triage message", logger.ErrorField(err), logger.Field("message_id", messageID))
		return err
	}
	if err := s.redisClient.XDel(ctx, streamName, messageID).Err(); err != nil {
		s.log.Error("Failed to delete triage message", logger.ErrorField(err), logger.Field("message_id", messageID))
		return err
	}
	return nil
}

// FlushDigest sends the buffered accepted headlines as a digest and clears
// the buffer.
func (s *triageService) FlushDigest() {
	s.mu.Lock()
	entries := s.digest
	s.digest = nil
	s.mu.Unlock()

	for _, msg := range telegram.FormatTriageDigestForTelegram(entries) {
		if err := s.telegramBot.SendMessage(msg); err != nil {
			s.log.Error("Failed to send digest message", logger.ErrorField(err))
		}
	}
	s.log.Info("Digest flushed", logger.IntField("entries", len(entries)))
}

func (s *triageService) processHeadline(ctx context.Context, data *dto.StreamDataTriageRequest) error {
	h := &dto.Headline{
		Text:    data.Headline,
		Tickers: data.Tickers,
		Source:  data.Source,
	}
	if data.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339, data.PublishedAt); err == nil {
			h.PublishedAt = &ts
		}
	}

	result, err := s.pipeline.Evaluate(ctx, h)
	if err != nil {
		return err
	}

	if !result.Accepted {
		s.log.Info("Headline rejected",
			logger.StringField("evaluation_id", result.EvaluationID.String()),
			logger.StringField("stage", result.RejectionStage))
		return nil
	}

	if err := s.publishAccepted(ctx, h, result); err != nil {
		return err
	}
	s.recordDigestEntry(h, result)
	s.notifyAccepted(h, result)
	return nil
}

func (s *triageService) publishAccepted(ctx context.Context, h *dto.Headline, result *dto.PipelineResult) error {
	accepted := dto.StreamDataTriageAccepted{
		EvaluationID:    result.EvaluationID.String(),
		Headline:        h.Text,
		Source:          h.Source,
		Recipe:          result.Recipe.Recipe,
		Priority:        result.Recipe.Priority,
		MaterialTickers: result.Recipe.MaterialTickers,
		EvaluatedAt:     result.EvaluatedAt.Format(time.RFC3339),
	}
	payload, err := json.Marshal(accepted)
	if err != nil {
		return fmt.Errorf("failed to marshal accepted headline: %w", err)
	}

	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamTriageAccepted,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen, // Limit the stream size
	}).Err(); err != nil {
		s.log.Error("Failed to publish accepted headline", logger.ErrorField(err), logger.StringField("evaluation_id", accepted.EvaluationID))
		return fmt.Errorf("failed to publish accepted headline: %w", err)
	}

	s.log.Info("Accepted headline published",
		logger.StringField("evaluation_id", accepted.EvaluationID),
		logger.StringField("recipe", accepted.Recipe))
	return nil
}

func (s *triageService) recordDigestEntry(h *dto.Headline, result *dto.PipelineResult) {
	// The buffer only grows when a digest cron will drain it.
	if !s.cfg.Telegram.Enabled || s.cfg.Telegram.DigestCron == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.digest) >= maxDigestEntries {
		s.digest = s.digest[1:]
	}
	s.digest = append(s.digest, dto.TriageDigestEntry{
		Headline:        h.Text,
		Recipe:          result.Recipe.Recipe,
		Priority:        result.Recipe.Priority,
		MaterialTickers: result.Recipe.MaterialTickers,
		EvaluatedAt:     result.EvaluatedAt,
	})
}

// notifyAccepted alerts immediately on priority 1 headlines. Lower
// priorities ride the digest.
func (s *triageService) notifyAccepted(h *dto.Headline, result *dto.PipelineResult) {
	if !s.cfg.Telegram.Enabled || result.Recipe.Priority != dto.PriorityQuantitative {
		return
	}
	if err := s.telegramBot.SendMessage(telegram.FormatTriageResultMessage(h.Text, result)); err != nil {
		s.log.Error("Failed to send acceptance alert", logger.ErrorField(err), logger.StringField("evaluation_id", result.EvaluationID.String()))
	}
}
