// Package handler provides HTTP handlers for the support platform API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bookleaf/support-platform/internal/agent"
	"github.com/bookleaf/support-platform/internal/middleware"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/internal/service"
	"github.com/bookleaf/support-platform/pkg/logger"
)

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	botService *service.BotService
	logger     *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(botService *service.BotService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		botService: botService,
		logger:     log,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateQuery(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidatePlatform(req.Platform); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateSenderID(req.SenderID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	platform, _ := model.ParsePlatform(req.Platform)

	outcome, err := h.botService.RunCustomerBot(ctx, req.Query, platform, req.SenderID, req.ThreadID)
	if err != nil {
		// A cycle-limit abort means the run never reached a terminal
		// state; internal details stay off the channel surface.
		if errors.Is(err, agent.ErrToolCycleLimit) {
			h.logger.Error("run aborted at cycle limit", zap.Error(err))
		} else {
			h.logger.Error("run failed", zap.Error(err))
		}
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, &model.ChatResponse{
		Response:      outcome.Response,
		Handover:      outcome.Handover,
		Platform:      req.Platform,
		SenderID:      req.SenderID,
		VerifiedEmail: outcome.VerifiedEmail,
	})
}
