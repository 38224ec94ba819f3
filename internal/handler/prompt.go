package handler

import (
	"net/http"

	"github.com/ecosnap/ecosnap/internal/ctxkeys"
	"github.com/ecosnap/ecosnap/internal/httpx"
	"github.com/ecosnap/ecosnap/internal/service"
)

type promptHandler struct {
	promptService *service.PromptService
}

func NewPromptHandler(promptService *service.PromptService) *promptHandler {
	return &promptHandler{
		promptService: promptService,
	}
}

type promptRequest struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (h *promptHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	prompts, err := h.promptService.List(user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, prompts)
}

func (h *promptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !decode(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	prompt, err := h.promptService.Create(user.ID, req.Label, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, prompt)
}

func (h *promptHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !decode(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	prompt, err := h.promptService.Update(user.ID, r.PathValue("id"), req.Label, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, prompt)
}

func (h *promptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.promptService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, messageResponse{Message: "Prompt deleted"})
}

func (h *promptHandler) AllPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.promptService.AllPrompts()
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, prompts)
}
