package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chatbot-api/internal/api/middleware"
	"github.com/Rrens/chatbot-api/internal/api/response"
	"github.com/Rrens/chatbot-api/internal/config"
	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/security"
	"github.com/Rrens/chatbot-api/internal/service"
)

const (
	msgUserExists        = "User already registered"
	msgBadCredentials    = "Incorrect email or password"
	msgStaleCredential   = "User not registered OR Token malfunctioned"
	msgValidationFailure = "Validation failed"
)

// userResponse is the flat body returned by the account endpoints
type userResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// AuthHandler handles account endpoints
type AuthHandler struct {
	authService *service.AuthService
	signer      *security.CookieSigner
	cookie      config.AuthConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, signer *security.CookieSigner, cookie config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		signer:      signer,
		cookie:      cookie,
	}
}

// Signup handles user registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input domain.UserSignup
	if err := decodeJSON(r, &input); err != nil {
		response.Message(w, decodeStatus(err), err.Error())
		return
	}

	if err := validate.Struct(input); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": msgValidationFailure,
			"errors":  fieldErrors(err),
		})
		return
	}

	session, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			response.Message(w, http.StatusConflict, msgUserExists)
			return
		}
		log.Error().Err(err).Msg("Signup failed")
		response.Message(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.setSessionCookie(w, session)
	response.JSON(w, http.StatusCreated, userResponse{Message: "OK", Name: session.User.Name, Email: session.User.Email})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := decodeJSON(r, &input); err != nil {
		response.Message(w, decodeStatus(err), err.Error())
		return
	}

	if err := validate.Struct(input); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": msgValidationFailure,
			"errors":  fieldErrors(err),
		})
		return
	}

	session, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			response.Message(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		log.Error().Err(err).Msg("Login failed")
		response.Message(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.setSessionCookie(w, session)
	response.JSON(w, http.StatusOK, userResponse{Message: "OK", Name: session.User.Name, Email: session.User.Email})
}

// Status reports the user behind the session cookie
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, userResponse{Message: "OK", Name: user.Name, Email: user.Email})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.clearSessionCookie(w)
	response.JSON(w, http.StatusOK, userResponse{Message: "OK", Name: user.Name, Email: user.Email})
}

func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userID, _ := middleware.GetUserID(r.Context())

	user, err := h.authService.Status(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			response.Message(w, http.StatusUnauthorized, msgStaleCredential)
			return nil, false
		}
		log.Error().Err(err).Msg("Failed to resolve session user")
		response.Message(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	email, _ := middleware.GetUserEmail(r.Context())
	if email != "" && email != user.Email {
		response.Message(w, http.StatusUnauthorized, "Permissions didn't match")
		return nil, false
	}
	return user, true
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *service.Session) {
	h.clearSessionCookie(w)
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    h.signer.Sign(session.Token),
		Path:     "/",
		Domain:   h.cookie.CookieDomain,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
