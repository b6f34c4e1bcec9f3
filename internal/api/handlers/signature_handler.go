package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"sigcheck/internal/api/middleware"
	"sigcheck/internal/engine/signature"
	"sigcheck/internal/pkg/errors"
	"sigcheck/internal/platform/config"
	"sigcheck/internal/platform/metrics"
)

type SignatureHandler struct {
	webhooks    *signature.Service
	verifier    *signature.Service
	header      string
	exposeDebug bool
	maxBody     int64
}

func NewSignatureHandler(cfg config.WebhooksConfig, maxBody int64, webhooks, verifier *signature.Service) *SignatureHandler {
	return &SignatureHandler{
		webhooks:    webhooks,
		verifier:    verifier,
		header:      cfg.SignatureHeader,
		exposeDebug: cfg.ExposeDebug,
		maxBody:     maxBody,
	}
}

type GenerateRequest struct {
	Secret  string `json:"secret"`
	Payload string `json:"payload"`
}

type GenerateResponse struct {
	Signature string `json:"signature"`
}

type VerifyResponse struct {
	Valid             bool   `json:"valid"`
	ExpectedSignature string `json:"expectedSignature,omitempty"`
	ProvidedSignature string `json:"providedSignature,omitempty"`
	Error             string `json:"error,omitempty"`
}

type WebhookResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type SignatureDebug struct {
	Expected string `json:"expected"`
	Provided string `json:"provided"`
}

func (h *SignatureHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&req); err != nil {
		if tooLarge(err) {
			errors.WriteError(w, http.StatusRequestEntityTooLarge, "", "Request body too large", nil)
			return
		}
		errors.WriteError(w, http.StatusBadRequest, "", "Invalid request body", nil)
		return
	}

	sig, err := signature.GenerateSignature([]byte(req.Secret), []byte(req.Payload))
	if stderrors.Is(err, signature.ErrMissingInput) {
		errors.WriteError(w, http.StatusBadRequest, "", "Secret and payload are required", nil)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("request_id", middleware.RequestIDFrom(r.Context())).Msg("error generating signature")
		errors.WriteError(w, http.StatusInternalServerError, "", "Failed to generate signature", nil)
		return
	}

	metrics.IncGenerated()
	errors.WriteJSON(w, http.StatusOK, GenerateResponse{Signature: sig})
}

func (h *SignatureHandler) Verify(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFrom(r.Context())

	if !h.verifier.HasSecret() {
		log.Error().Str("request_id", reqID).Msg("verify secret is not configured")
		errors.WriteJSON(w, http.StatusInternalServerError, VerifyResponse{Error: "Failed to verify signature"})
		return
	}

	provided := r.Header.Get(h.header)
	if provided == "" {
		errors.WriteJSON(w, http.StatusBadRequest, VerifyResponse{Error: "No signature provided"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		if tooLarge(err) {
			errors.WriteJSON(w, http.StatusRequestEntityTooLarge, VerifyResponse{Error: "Request body too large"})
			return
		}
		log.Error().Err(err).Str("request_id", reqID).Msg("error verifying signature")
		errors.WriteJSON(w, http.StatusInternalServerError, VerifyResponse{Error: "Failed to verify signature"})
		return
	}

	expected, err := h.verifier.Generate(payload)
	if err != nil {
		errors.WriteJSON(w, http.StatusBadRequest, VerifyResponse{Error: "No payload provided"})
		return
	}

	valid := h.verifier.Verify(payload, provided)
	metrics.IncVerification(valid)

	errors.WriteJSON(w, http.StatusOK, VerifyResponse{
		Valid:             valid,
		ExpectedSignature: expected,
		ProvidedSignature: provided,
	})
}

func (h *SignatureHandler) ValidateWebhook(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFrom(r.Context())

	rawBody, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		if tooLarge(err) {
			errors.WriteError(w, http.StatusRequestEntityTooLarge, errors.ErrCodePayloadTooLarge, "Request body too large", nil)
			return
		}
		log.Error().Err(err).Str("request_id", reqID).Msg("webhook validation error")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeValidationFailure, "Failed to validate webhook", nil)
		return
	}

	res := h.webhooks.ValidateWebhook(rawBody, r.Header.Get(h.header))
	metrics.IncWebhookValidation(res.Outcome.String())

	if res.Outcome != signature.Valid {
		evt := log.Warn().Str("request_id", reqID).Str("code", res.Outcome.Code())
		if res.Outcome == signature.MissingSecret {
			evt = log.Error().Str("request_id", reqID).Str("code", res.Outcome.Code())
		}
		evt.Msg("webhook rejected")

		var debug interface{}
		if res.Outcome == signature.InvalidSignature {
			log.Debug().Str("request_id", reqID).Str("expected", res.Expected).Str("provided", res.Provided).Msg("signature mismatch")
			if h.exposeDebug {
				debug = SignatureDebug{Expected: res.Expected, Provided: res.Provided}
			}
		}
		errors.WriteError(w, res.Outcome.HTTPStatus(), res.Outcome.Code(), res.Message, debug)
		return
	}

	log.Info().Str("request_id", reqID).Str("type", res.EventType).Msg("webhook validated")
	errors.WriteJSON(w, http.StatusOK, WebhookResponse{
		Success:   true,
		Message:   res.Message,
		Timestamp: res.Timestamp,
	})
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return stderrors.As(err, &maxErr)
}
