package service

import (
	"context"
	"errors"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/constants"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/metrics"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"go.uber.org/zap"
)

// ReviewPublisher forwards confirmations that could not be attributed to a
// transaction onto the manual review queue.
type ReviewPublisher interface {
	PublishReview(ctx context.Context, review ReviewCommand) error
}

// WebhookService ingests provider callbacks. The callback is treated as a
// hint, not a command: after signature checks the event goes through the
// same correlation and reconciliation path the pollers use.
type WebhookService interface {
	HandleCallback(ctx context.Context, cmd HandleCallbackCommand) (CallbackResult, error)
}

type webhook struct {
	gateway   payprovider.Gateway
	resolver  CorrelationResolver
	reconcile ReconcileService
	review    ReviewPublisher
	cfg       config.Webhook
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewWebhookService(gateway payprovider.Gateway, resolver CorrelationResolver, reconcile ReconcileService,
	review ReviewPublisher, cfg *config.Config, metrics *metrics.Metrics, logger *zap.Logger) WebhookService {
	return &webhook{gateway: gateway, resolver: resolver, reconcile: reconcile,
		review: review, cfg: cfg.Webhook, metrics: metrics, logger: logger}
}

func (w *webhook) HandleCallback(ctx context.Context, cmd HandleCallbackCommand) (CallbackResult, error) {
	event, err := w.gateway.ParseCallback(cmd.RawBody)
	if err != nil {
		w.metrics.RecordWebhookCallback("malformed")
		w.logger.Warn("Failed to parse provider callback", zap.Error(err))
		return CallbackResult{}, NewServiceError(constants.ErrCodeInvalidRequestBody, err)
	}

	if !w.gateway.VerifySignature(event.RawPayload) {
		w.metrics.RecordSignatureFailure()

		if w.cfg.StrictSignature {
			w.metrics.RecordWebhookCallback("signature_rejected")
			w.logger.Warn("Rejected callback with invalid signature",
				zap.String("providerOrderID", event.ProviderOrderID))
			return CallbackResult{}, NewServiceError(constants.ErrCodeInvalidSignature, ErrSignatureInvalid)
		}

		// Permissive mode still accepts the payload but marks it so the
		// audit trail shows which confirmations arrived unverified.
		w.logger.Warn("Accepting callback with invalid signature",
			zap.String("providerOrderID", event.ProviderOrderID))
		if event.RawPayload == nil {
			event.RawPayload = map[string]string{}
		}
		event.RawPayload["signature_verified"] = "false"
	}

	transaction, err := w.resolver.Resolve(ctx, event)
	if err != nil {
		if errors.Is(err, ErrCorrelationNotFound) || errors.Is(err, ErrCorrelationAmbiguous) {
			return w.sendToReview(ctx, event, err)
		}
		w.metrics.RecordWebhookCallback("error")
		return CallbackResult{}, err
	}

	result, err := w.reconcile.Apply(ctx, transaction.ID, event)
	if err != nil {
		w.metrics.RecordWebhookCallback("error")
		return CallbackResult{}, err
	}

	w.metrics.RecordWebhookCallback("applied")
	return CallbackResult{Result: string(result), TransactionID: transaction.ID}, nil
}

// sendToReview parks the confirmation for an operator instead of guessing.
// The provider still gets an acknowledgement so it stops redelivering.
func (w *webhook) sendToReview(ctx context.Context, event payprovider.ConfirmationEvent, cause error) (CallbackResult, error) {
	reason := "not_found"
	if errors.Is(cause, ErrCorrelationAmbiguous) {
		reason = "ambiguous"
	}

	w.metrics.RecordCorrelationFailure(reason)
	w.logger.Warn("Could not attribute provider callback",
		zap.String("providerOrderID", event.ProviderOrderID),
		zap.String("alternateID", event.AlternateID),
		zap.String("reason", reason))

	review := ReviewCommand{
		ProviderOrderID: event.ProviderOrderID,
		AlternateID:     event.AlternateID,
		Outcome:         string(event.Outcome),
		SettledAmount:   event.SettledAmount,
		Reason:          reason,
		RawPayload:      event.RawPayload,
	}
	if err := w.review.PublishReview(ctx, review); err != nil {
		w.logger.Error("Failed to publish callback for review", zap.Error(err))
		w.metrics.RecordWebhookCallback("error")
		return CallbackResult{}, NewServiceError(constants.ErrCodeInternalError, err)
	}

	w.metrics.RecordWebhookCallback("review")
	return CallbackResult{Result: "PENDING_REVIEW"}, nil
}
