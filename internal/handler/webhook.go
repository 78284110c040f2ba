package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/markket/storefront-api/internal/helpers"
	"github.com/markket/storefront-api/internal/metrics"
	"github.com/markket/storefront-api/internal/middleware"
	"github.com/markket/storefront-api/internal/models"
	"github.com/markket/storefront-api/internal/validation"
)

// Webhook verifies a signed payments provider delivery and dispatches it to the registered processor.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("requestId", middleware.RequestIDFrom(r.Context())))
	if r.Method != http.MethodPost {
		logger.Debug("rejecting webhook request...", slog.String("method", r.Method), "reason", "method not allowed")
		helpers.RespondError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("failed to read webhook body", slog.Any("error", err))
		metrics.RecordWebhookEvent("", metrics.OutcomeFailed)
		helpers.RespondError(w, http.StatusInternalServerError, MsgWebhookFailed)
		return
	}

	secret, err := h.secrets.WebhookSecret(r.Context())
	if err != nil {
		logger.Error("failed to resolve webhook secret", slog.Any("error", err))
		metrics.RecordWebhookEvent("", metrics.OutcomeFailed)
		helpers.RespondError(w, http.StatusInternalServerError, MsgWebhookFailed)
		return
	}
	webhookSecret := validation.NewWebhookSecret(secret, h.tolerance)
	headers := normaliseHeaders(r.Header)

	if !webhookSecret.Configured() {
		h.missingSecretLog.Do(func() {
			h.logger.Error("webhook secret is not configured, every delivery is rejected")
		})
	}
	if !webhookSecret.Configured() || validation.Signature(headers) == "" {
		metrics.RecordWebhookEvent("", metrics.OutcomeRejected)
		helpers.RespondError(w, http.StatusBadRequest, MsgMissingSignature)
		return
	}

	event, err := webhookSecret.ValidateSignature(body, headers)
	if err != nil {
		logger.Warn("validating signature", slog.Any("error", err))
		metrics.RecordWebhookEvent("", metrics.OutcomeRejected)
		helpers.RespondError(w, http.StatusBadRequest, MsgSignatureFailed)
		return
	}
	eventType := string(event.Type)
	logger = logger.With(slog.String("event", event.ID), slog.String("type", eventType))
	logger.Debug("webhook signature is valid")

	handled, err := h.processors.Dispatch(r.Context(), &event)
	switch {
	case err != nil:
		logger.Error("failed to process webhook event", slog.Any("error", err))
		metrics.RecordWebhookEvent(eventType, metrics.OutcomeFailed)
		helpers.RespondError(w, http.StatusInternalServerError, MsgWebhookFailed)
		return
	case !handled:
		logger.Info("unhandled event type")
		metrics.RecordWebhookEvent(eventType, metrics.OutcomeUnhandled)
	default:
		metrics.RecordWebhookEvent(eventType, metrics.OutcomeSuccess)
	}

	helpers.RespondJSON(w, models.Response{Body: models.WebhookAck{Received: true}})
}
