package handler

import (
	"errors"
	"net/http"

	"github.com/ecosnap/ecosnap/internal/ctxkeys"
	"github.com/ecosnap/ecosnap/internal/httpx"
	"github.com/ecosnap/ecosnap/internal/model"
	"github.com/ecosnap/ecosnap/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{
		authService: authService,
	}
}

type authResponse struct {
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
	Message string           `json:"message,omitempty"`
}

type verificationRequiredResponse struct {
	Error             string           `json:"error"`
	NeedsVerification bool             `json:"needsVerification"`
	User              model.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}

	res, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, authResponse{
		Token:   res.Token,
		User:    res.User.Public(),
		Message: "Registration successful. Check your email for the verification code.",
	})
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var vre *service.VerificationRequiredError
		if errors.As(err, &vre) {
			httpx.JSON(w, http.StatusForbidden, verificationRequiredResponse{
				Error:             "Please verify your email before logging in",
				NeedsVerification: true,
				User:              vre.User.Public(),
			})
			return
		}
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, authResponse{
		Token: res.Token,
		User:  res.User.Public(),
	})
}

func (h *authHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email            string `json:"email"`
		VerificationCode string `json:"verificationCode"`
	}
	if !decode(w, r, &req) {
		return
	}

	res, err := h.authService.VerifyEmail(r.Context(), req.Email, req.VerificationCode)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, authResponse{
		Token:   res.Token,
		User:    res.User.Public(),
		Message: "Email verified successfully",
	})
}

func (h *authHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	err := h.authService.ResendVerification(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, messageResponse{Message: "Verification code sent"})
}

func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	err := h.authService.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Same answer for known and unknown addresses
	httpx.JSON(w, http.StatusOK, messageResponse{Message: "If an account exists for this email, a reset code has been sent"})
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	err := h.authService.ResetPassword(r.Context(), req.Email, req.Code, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, messageResponse{Message: "Password has been reset"})
}

func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]model.PublicUser{"user": user.Public()})
}
