package cases

import (
	"encoding/json"
	"net/http"
	"time"

	"advogados-solidarios/internal/middleware"
	"advogados-solidarios/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/causas", submitCaseHandler(svc))
	r.Get("/causas", listOpenCasesHandler(svc))
	r.Get("/causas/{caseID}", getCaseHandler(svc))
	r.Post("/causas/{caseID}/concluir", concludeCaseHandler(svc))
}

type submitCaseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ownerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CaseResponse también lo reutiliza proposals al aceptar.
type CaseResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      Status        `json:"status"`
	Usuario     *ownerSummary `json:"usuario,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// submitCaseHandler
//
//	@Summary	Submete um novo caso (somente USUARIO)
//	@Tags		causas
//	@Accept		json
//	@Produce	json
//	@Param		body	body		submitCaseRequest	true	"caso"
//	@Success	201		{object}	CaseResponse
//	@Failure	400		{object}	apperr.Body
//	@Failure	403		{object}	apperr.Body
//	@Router		/causas [post]
func submitCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := middleware.GetIdentity(r.Context())
		if !ok {
			apperr.Write(w, ErrUnauthenticated)
			return
		}

		var req submitCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.WriteMessage(w, http.StatusBadRequest, apperr.Body{Message: "JSON inválido."})
			return
		}

		c, err := svc.Submit(r.Context(), who, SubmitInput{
			Title:       req.Title,
			Description: req.Description,
		})
		if err != nil {
			apperr.Write(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToResponse(c))
	}
}

// listOpenCasesHandler
//
//	@Summary	Lista casos abertos (busca opcional por título/descrição)
//	@Tags		causas
//	@Produce	json
//	@Param		q	query	string	false	"busca"
//	@Success	200	{array}	CaseResponse
//	@Router		/causas [get]
func listOpenCasesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetIdentity(r.Context()); !ok {
			apperr.Write(w, ErrUnauthenticated)
			return
		}

		items, err := svc.ListOpen(r.Context(), ListFilter{Query: r.URL.Query().Get("q")})
		if err != nil {
			apperr.Write(w, err)
			return
		}

		out := make([]CaseResponse, 0, len(items))
		for _, c := range items {
			out = append(out, ToResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetIdentity(r.Context()); !ok {
			apperr.Write(w, ErrUnauthenticated)
			return
		}

		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "caseID"))
		if err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(c))
	}
}

// concludeCaseHandler
//
//	@Summary	Marca o caso como concluído (dono, após aceite)
//	@Tags		causas
//	@Produce	json
//	@Param		caseID	path		string	true	"id do caso"
//	@Success	200		{object}	CaseResponse
//	@Failure	409		{object}	apperr.Body
//	@Router		/causas/{caseID}/concluir [post]
func concludeCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := middleware.GetIdentity(r.Context())
		if !ok {
			apperr.Write(w, ErrUnauthenticated)
			return
		}

		c, err := svc.Conclude(r.Context(), chi.URLParam(r, "caseID"), who)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(c))
	}
}

func ToResponse(c Case) CaseResponse {
	resp := CaseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.OwnerID != "" {
		resp.Usuario = &ownerSummary{ID: c.OwnerID, Name: c.OwnerName}
	}
	return resp
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
