package handler

import (
	"cmp"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/markket/storefront-api/internal/controllers/stripe"
	"github.com/markket/storefront-api/internal/helpers"
	"github.com/markket/storefront-api/internal/metrics"
	"github.com/markket/storefront-api/internal/middleware"
	"github.com/markket/storefront-api/internal/models"
)

// Connect runs one step of the payment account onboarding sequence selected by the action query parameter.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("requestId", middleware.RequestIDFrom(r.Context())))
	rawAction := r.URL.Query().Get("action")
	actionLabel := metrics.ActionInvalid
	if action, err := models.ParseConnectAction(rawAction); err == nil {
		actionLabel = string(action)
	}
	if r.Method != http.MethodPost {
		logger.Debug("rejecting connect request...", slog.String("method", r.Method), "reason", "method not allowed")
		helpers.RespondError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		return
	}

	var req models.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Info("malformed connect request", slog.Any("error", err))
		metrics.RecordConnectAction(actionLabel, metrics.OutcomeRejected)
		helpers.RespondError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	logger = logger.With(slog.Bool("testMode", req.TestMode))

	provider, err := h.providers.Client(r.Context(), req.TestMode)
	if err != nil {
		logger.Error("payments provider client unavailable", slog.Any("error", err))
		metrics.RecordConnectAction(actionLabel, metrics.OutcomeFailed)
		helpers.RespondError(w, http.StatusInternalServerError, MsgProviderUninitialized)
		return
	}

	action, err := models.ParseConnectAction(rawAction)
	if err != nil {
		logger.Info("rejecting connect request", slog.Any("error", err))
		metrics.RecordConnectAction(metrics.ActionInvalid, metrics.OutcomeRejected)
		helpers.RespondError(w, http.StatusBadRequest, MsgInvalidAction)
		return
	}
	logger = logger.With(slog.String("action", string(action)))

	var response models.Response
	switch action {
	case models.ConnectActionAccount:
		response = h.createAccount(r, logger, provider, req)
	case models.ConnectActionAccountLink:
		response = h.createAccountLink(r, logger, provider, req)
	}
	outcome := metrics.OutcomeSuccess
	switch {
	case response.StatusCode >= http.StatusInternalServerError:
		outcome = metrics.OutcomeFailed
	case response.StatusCode >= http.StatusBadRequest:
		outcome = metrics.OutcomeRejected
	}
	metrics.RecordConnectAction(string(action), outcome)
	helpers.RespondJSON(w, response)
}

// createAccount creates the provider account and then records its identifier on the store. The provider result is
// authoritative: a failed store update is logged and counted, never reported to the caller.
func (h *Handler) createAccount(r *http.Request, logger *slog.Logger, provider stripe.Provider, req models.ConnectRequest) models.Response {
	in := models.AccountRequest{
		Store:   req.Store,
		Email:   middleware.UserEmail(r.Context()),
		Type:    cmp.Or(req.Type, h.connect.AccountType),
		Country: strings.ToUpper(cmp.Or(req.Country, h.connect.Country)),
	}
	if err := h.validate.Struct(in); err != nil {
		logger.Info("invalid account request", slog.Any("error", err))
		return errorResponse(http.StatusBadRequest, validationMessage(err))
	}
	logger = logger.With(slog.String("store", in.Store))

	accountID, err := provider.CreateAccount(r.Context(), stripe.AccountParams{
		Type:    in.Type,
		Country: in.Country,
		Email:   in.Email,
	})
	if err != nil {
		logger.Error("failed to create account", slog.Any("error", err))
		return errorResponse(http.StatusInternalServerError, stripe.ErrorMessage(err))
	}
	logger = logger.With(slog.String("account", accountID))
	logger.Info("account created")

	if err = h.stores.UpdateStore(r.Context(), in.Store, map[string]any{models.StripeCustomerIDField: accountID}); err != nil {
		logger.Error("failed to persist account on store, manual reconciliation required", slog.Any("error", err))
		metrics.RecordConnectPersistFailure()
	}

	return models.Response{Body: models.AccountResponse{Account: accountID}}
}

func (h *Handler) createAccountLink(r *http.Request, logger *slog.Logger, provider stripe.Provider, req models.ConnectRequest) models.Response {
	in := models.AccountLinkRequest{Store: req.Store, Account: req.Account}
	if err := h.validate.Struct(in); err != nil {
		logger.Info("invalid account link request", slog.Any("error", err))
		return errorResponse(http.StatusBadRequest, validationMessage(err))
	}

	origin := requestOrigin(r)
	values := map[string]string{"store": url.QueryEscape(in.Store)}
	params := stripe.AccountLinkParams{
		Account:    in.Account,
		RefreshURL: origin + helpers.ExpandPlaceholders(h.connect.RefreshPath, values),
		ReturnURL:  origin + helpers.ExpandPlaceholders(h.connect.ReturnPath, values),
	}

	link, err := provider.CreateAccountLink(r.Context(), params)
	if err != nil {
		logger.Error("failed to create account link", slog.Any("error", err), slog.String("account", in.Account))
		return errorResponse(http.StatusInternalServerError, stripe.ErrorMessage(err))
	}
	return models.Response{Body: models.AccountLinkResponse{URL: link}}
}

// requestOrigin returns the Origin header, or the scheme and host the request was addressed to.
func requestOrigin(r *http.Request) string {
	if origin := strings.TrimRight(r.Header.Get("Origin"), "/"); origin != "" {
		return origin
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme, _, _ = strings.Cut(proto, ",")
		scheme = strings.TrimSpace(scheme)
	}
	return scheme + "://" + r.Host
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return MsgInvalidBody
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return "Missing or invalid fields: " + strings.Join(fields, ", ")
}

func errorResponse(statusCode int, message string) models.Response {
	return models.Response{StatusCode: statusCode, Body: models.ErrorBody{Error: message}}
}
