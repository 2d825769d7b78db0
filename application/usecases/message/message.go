package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptroom/api/domain/model"
	"github.com/promptroom/api/domain/pricing"
	"github.com/promptroom/api/domain/repository"
	"github.com/promptroom/api/infrastructure/config"
	"github.com/promptroom/api/infrastructure/events"
	"github.com/promptroom/api/infrastructure/inference"
	"github.com/promptroom/api/infrastructure/logger"
	"github.com/promptroom/api/infrastructure/metrics"
	"github.com/promptroom/api/infrastructure/payments"
)

const (
	insufficientBalanceText = "Insufficient balance."
	hostUnreachableText     = "Host model unreachable."
	paymentIncompleteText   = "Payment was not completed."
)

// InferenceClient is the outbound model boundary; narrowed here so tests can
// stand in for the real HTTP client.
type InferenceClient interface {
	Complete(ctx context.Context, req inference.Request) (*inference.Result, error)
}

// PostResult carries whichever messages one guest prompt produced. Every
// operational outcome is a normal result; the chat stream degrades with
// system notices instead of breaking the polling client.
type PostResult struct {
	Prompt   *model.Message
	Response *model.Message
	System   *model.Message
}

type MessageUseCase interface {
	Post(ctx context.Context, roomID, from, text string, tokenBudget int64) (*PostResult, error)
	List(ctx context.Context, roomID string, after int64) ([]*model.Message, error)
}

type messageUseCase struct {
	messages    repository.MessageRepository
	hosts       repository.HostRepository
	balances    repository.BalanceRepository
	inference   InferenceClient
	facilitator payments.Facilitator
	publisher   *events.Publisher
	metrics     metrics.Manager
	logger      *logger.Logger
	cfg         *config.Config
}

func NewMessageUseCase(
	messages repository.MessageRepository,
	hosts repository.HostRepository,
	balances repository.BalanceRepository,
	inferenceClient InferenceClient,
	facilitator payments.Facilitator,
	publisher *events.Publisher,
	metricsManager metrics.Manager,
	logger *logger.Logger,
	cfg *config.Config,
) MessageUseCase {
	return &messageUseCase{
		messages:    messages,
		hosts:       hosts,
		balances:    balances,
		inference:   inferenceClient,
		facilitator: facilitator,
		publisher:   publisher,
		metrics:     metricsManager,
		logger:      logger,
		cfg:         cfg,
	}
}

// Post runs one guest prompt end to end: record it, admit it against the
// payer's balance, forward it to the host's model, and settle. The ledger is
// only ever touched after a settlement receipt exists, and always by atomic
// adjustment.
func (uc *messageUseCase) Post(ctx context.Context, roomID, from, text string, tokenBudget int64) (*PostResult, error) {
	roomID = model.NormalizeRoomID(roomID)
	budget := uc.clampBudget(tokenBudget)

	prompt := uc.newMessage(roomID, model.KindPrompt, from, text, "")

	// The prompt is visible even if everything downstream fails.
	if err := uc.messages.Append(ctx, prompt); err != nil {
		return nil, fmt.Errorf("failed to append prompt: %w", err)
	}
	if err := uc.publisher.PublishMessagePosted(ctx, roomID, from, prompt.ID); err != nil {
		uc.logger.Warn("failed to publish message posted event", zap.Error(err), zap.String("roomID", roomID))
	}

	result := &PostResult{Prompt: prompt}

	host, err := uc.hosts.Get(ctx, roomID)
	if err != nil && !errors.Is(err, model.ErrCorruptHostState) {
		return nil, fmt.Errorf("failed to read host record: %w", err)
	}
	if host == nil || !host.Online(uc.cfg.Room.HostTTL) {
		// Host-offline is a normal outcome, not an error.
		uc.metrics.CountSettlement(metrics.OutcomeNoHost)
		return result, nil
	}

	estimate := pricing.Charge(budget, host.RatePerK, uc.cfg.Pricing.BlockSize)

	balance, err := uc.balances.Get(ctx, roomID, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read payer balance: %w", err)
	}
	if balance < estimate {
		uc.metrics.CountSettlement(metrics.OutcomeInsufficient)
		uc.logger.Info("prompt rejected for insufficient balance",
			zap.String("roomID", roomID),
			zap.String("payer", from),
			zap.Int64("balance", balance),
			zap.Int64("estimate", estimate),
		)
		result.System = uc.appendSystem(ctx, roomID, prompt.ID, insufficientBalanceText)
		return result, nil
	}

	inferenceResult, err := uc.forward(ctx, roomID, host, budget)
	if err != nil {
		uc.metrics.CountSettlement(metrics.OutcomeUnreachable)
		uc.logger.Warn("inference forwarding failed",
			zap.Error(err),
			zap.String("roomID", roomID),
			zap.String("endpoint", host.ModelEndpoint),
		)
		result.System = uc.appendSystem(ctx, roomID, prompt.ID, hostUnreachableText)
		return result, nil
	}

	response := uc.newMessage(roomID, model.KindResponse, host.HostAddr, inferenceResult.Text, prompt.ID)
	response.Meta = &model.MessageMeta{
		TokenUsage:      inferenceResult.TokenUsage,
		TokensPerSecond: inferenceResult.TokensPerSecond,
	}

	receipt, err := uc.facilitator.Charge(ctx, payments.ChargeInput{
		PayerAddr:   from,
		RecvAddr:    host.RecvAddr,
		AmountMicro: estimate,
	})
	if err != nil {
		// The answer exists and the guest must see it, but without a
		// receipt the ledger stays untouched.
		uc.metrics.CountSettlement(metrics.OutcomeUnsettled)
		uc.logger.Error("settlement failed after successful inference",
			zap.Error(err),
			zap.String("roomID", roomID),
			zap.String("payer", from),
			zap.Int64("estimate", estimate),
		)
		if err := uc.messages.Append(ctx, response); err != nil {
			return nil, fmt.Errorf("failed to append response: %w", err)
		}
		if err := uc.publisher.PublishSettlementFlagged(ctx, roomID, from, estimate); err != nil {
			uc.logger.Warn("failed to publish settlement flagged event", zap.Error(err), zap.String("roomID", roomID))
		}
		result.Response = response
		result.System = uc.appendSystem(ctx, roomID, prompt.ID, paymentIncompleteText)
		return result, nil
	}

	// Receipt in hand: the settled amount is authoritative, even when it
	// differs from the local estimate.
	if _, err := uc.balances.Adjust(ctx, roomID, from, -receipt.AmountMicro); err != nil {
		uc.logger.Error("failed to debit payer", zap.Error(err), zap.String("roomID", roomID), zap.String("payer", from))
	}
	if _, err := uc.balances.Adjust(ctx, roomID, host.RecvAddr, receipt.AmountMicro); err != nil {
		uc.logger.Error("failed to credit host", zap.Error(err), zap.String("roomID", roomID), zap.String("recvAddr", host.RecvAddr))
	}

	response.Meta.TxHash = receipt.TxHash
	response.Meta.ChargedMicro = receipt.AmountMicro

	if err := uc.messages.Append(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to append response: %w", err)
	}

	uc.metrics.CountSettlement(metrics.OutcomeSettled)
	uc.metrics.AddChargedMicro(receipt.AmountMicro)

	if err := uc.publisher.PublishMessageSettled(ctx, roomID, from, receipt.TxHash, receipt.AmountMicro); err != nil {
		uc.logger.Warn("failed to publish message settled event", zap.Error(err), zap.String("roomID", roomID))
	}

	result.Response = response
	return result, nil
}

func (uc *messageUseCase) List(ctx context.Context, roomID string, after int64) ([]*model.Message, error) {
	roomID = model.NormalizeRoomID(roomID)
	return uc.messages.ReadAfter(ctx, roomID, after, uc.cfg.Room.MessageWindow)
}

// forward sends the chat context to the host's model inside the only
// cancellable window in the pipeline.
func (uc *messageUseCase) forward(ctx context.Context, roomID string, host *model.HostRecord, budget int64) (*inference.Result, error) {
	chatContext, err := uc.buildContext(ctx, roomID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.Inference.Timeout)
	defer cancel()

	started := time.Now()
	result, err := uc.inference.Complete(callCtx, inference.Request{
		Endpoint:  host.ModelEndpoint,
		Token:     host.ModelToken,
		ModelID:   host.ModelID,
		Messages:  chatContext,
		MaxTokens: budget,
	})
	uc.metrics.ObserveInferenceSeconds(time.Since(started).Seconds())

	return result, err
}

// buildContext turns the trailing log window into chat turns: prompts and
// responses only, most recent few, system notices excluded.
func (uc *messageUseCase) buildContext(ctx context.Context, roomID string) ([]inference.ChatMessage, error) {
	recent, err := uc.messages.ReadRecent(ctx, roomID, uc.cfg.Room.ContextWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to read context window: %w", err)
	}

	turns := make([]inference.ChatMessage, 0, len(recent))
	for _, msg := range recent {
		switch msg.Kind {
		case model.KindPrompt:
			turns = append(turns, inference.ChatMessage{Role: "user", Content: msg.Text})
		case model.KindResponse:
			turns = append(turns, inference.ChatMessage{Role: "assistant", Content: msg.Text})
		}
	}

	if max := uc.cfg.Room.ContextMessages; len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	return turns, nil
}

func (uc *messageUseCase) appendSystem(ctx context.Context, roomID, promptID, text string) *model.Message {
	msg := uc.newMessage(roomID, model.KindSystem, model.SystemSender, text, promptID)
	if err := uc.messages.Append(ctx, msg); err != nil {
		uc.logger.Error("failed to append system message", zap.Error(err), zap.String("roomID", roomID))
	}
	return msg
}

func (uc *messageUseCase) newMessage(roomID string, kind model.MessageKind, from, text, promptID string) *model.Message {
	return &model.Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Kind:      kind,
		From:      from,
		Text:      text,
		CreatedAt: time.Now().UnixMilli(),
		PromptID:  promptID,
	}
}

func (uc *messageUseCase) clampBudget(budget int64) int64 {
	if budget <= 0 {
		return uc.cfg.Inference.DefaultBudget
	}
	if budget > uc.cfg.Inference.MaxBudget {
		return uc.cfg.Inference.MaxBudget
	}
	return budget
}
