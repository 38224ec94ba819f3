package handler

import (
	"net/http"
	"strconv"

	"github.com/ecosnap/ecosnap/internal/ctxkeys"
	"github.com/ecosnap/ecosnap/internal/httpx"
	"github.com/ecosnap/ecosnap/internal/service"
)

type classificationHandler struct {
	classificationService *service.ClassificationService
}

func NewClassificationHandler(classificationService *service.ClassificationService) *classificationHandler {
	return &classificationHandler{
		classificationService: classificationService,
	}
}

func (h *classificationHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image  string `json:"image"`
		Prompt string `json:"prompt"`
	}
	if !decode(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	c, err := h.classificationService.Classify(r.Context(), user.ID, req.Image, req.Prompt)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, c)
}

// History serves GET /api/history?limit=&format=html
func (h *classificationHandler) History(w http.ResponseWriter, r *http.Request) {
	// invalid limits fall back to the maximum
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	user := ctxkeys.User(r.Context())
	history, err := h.classificationService.History(user.ID, limit, wantsHTML(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, history)
}

func (h *classificationHandler) AllHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.classificationService.AllHistory(wantsHTML(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, history)
}

func wantsHTML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "html"
}
