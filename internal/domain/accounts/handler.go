package accounts

import (
	"context"
	"encoding/json"
	"net/http"

	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/middleware"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

var errUnauthenticated = apperr.New(apperr.ErrAuthenticationRequired, "Sessão expirada. Faça login novamente.")

// RegisterPublicRoutes: login y registros. El router les pone rate limit.
func RegisterPublicRoutes(r chi.Router, svc *Service, tokens auth.TokenIssuer) {
	r.Post("/login", loginHandler(svc, tokens))
	r.Post("/usuarios", registerHandler(svc.RegisterCitizen))
	r.Post("/advogados", registerHandler(svc.RegisterLawyer))
}

func RegisterRoutes(r chi.Router, tokens auth.TokenIssuer) {
	r.Get("/me", meHandler())
	r.Post("/logout", logoutHandler(tokens))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authority struct {
	Authority string `json:"authority"`
}

type LoginResponse struct {
	Token       string      `json:"token"`
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	Authorities []authority `json:"authorities"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OAB      string `json:"oab,omitempty"`
}

type AccountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	OAB   string `json:"oab,omitempty"`
}

// loginHandler
//
//	@Summary	Login com e-mail e senha
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		loginRequest	true	"credenciais"
//	@Success	200		{object}	LoginResponse
//	@Failure	401		{object}	apperr.Body
//	@Failure	429		{object}	apperr.Body
//	@Router		/login [post]
func loginHandler(svc *Service, tokens auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.WriteMessage(w, http.StatusBadRequest, apperr.Body{Message: "JSON inválido."})
			return
		}

		who, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		token, _, err := tokens.Issue(r.Context(), auth.Claims{
			UserID: who.ID,
			Email:  who.Email,
			Name:   who.Name,
			Role:   who.Role.WireName(),
		})
		if err != nil {
			apperr.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token:       token,
			ID:          who.ID,
			Name:        who.Name,
			Email:       who.Email,
			Role:        who.Role.WireName(),
			Authorities: []authority{{Authority: who.Role.Authority()}},
		})
	}
}

// registerHandler
//
//	@Summary	Cadastro de cidadão (/usuarios) ou advogado (/advogados)
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		registerRequest	true	"cadastro"
//	@Success	201		{object}	AccountResponse
//	@Failure	400		{object}	apperr.Body
//	@Failure	409		{object}	apperr.Body
//	@Router		/usuarios [post]
//	@Router		/advogados [post]
func registerHandler(register func(ctx context.Context, in RegisterInput) (Account, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.WriteMessage(w, http.StatusBadRequest, apperr.Body{Message: "JSON inválido."})
			return
		}

		a, err := register(r.Context(), RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			OAB:      req.OAB,
		})
		if err != nil {
			apperr.Write(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toResponse(a))
	}
}

// meHandler
//
//	@Summary	Identidade da credencial atual
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	AccountResponse
//	@Failure	401	{object}	apperr.Body
//	@Router		/me [get]
func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := middleware.GetIdentity(r.Context())
		if !ok {
			apperr.Write(w, errUnauthenticated)
			return
		}
		writeJSON(w, http.StatusOK, identityResponse(who))
	}
}

// logoutHandler revoca la sesión del token. Sin sesión también responde 204.
//
//	@Summary	Logout
//	@Tags		auth
//	@Success	204
//	@Router		/logout [post]
func logoutHandler(tokens auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, ok := middleware.GetClaims(r.Context()); ok && c.SessionID != "" {
			if err := tokens.Revoke(r.Context(), c.SessionID); err != nil {
				apperr.Write(w, err)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func identityResponse(who identity.Identity) AccountResponse {
	return AccountResponse{ID: who.ID, Name: who.Name, Email: who.Email, Role: who.Role.WireName()}
}

func toResponse(a Account) AccountResponse {
	resp := identityResponse(a.Identity())
	resp.OAB = a.OAB
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
