package proposals

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/middleware"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/fields"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/propostas", submitProposalHandler(svc))
	r.Get("/propostas", listProposalsHandler(svc))
	r.Post("/causas/{caseID}/propostas/{proposalID}/aceitar", acceptProposalHandler(svc))
}

// valorSugerido llega como número o como texto del input ("150,50").
type submitProposalRequest struct {
	CaseID         string          `json:"causaId"`
	Message        string          `json:"mensagem"`
	SuggestedValue json.RawMessage `json:"valorSugerido,omitempty"`
}

type lawyerSummary struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

type ProposalResponse struct {
	ID             string        `json:"id"`
	CaseID         string        `json:"causaId"`
	Message        string        `json:"mensagem"`
	SuggestedValue *float64      `json:"valorSugerido,omitempty"`
	Advogado       lawyerSummary `json:"advogado"`
	CreatedAt      time.Time     `json:"createdAt"`
	Accepted       bool          `json:"aceita"`
	AcceptedAt     *time.Time    `json:"aceitaEm,omitempty"`
}

type acceptResponse struct {
	Causa    cases.CaseResponse `json:"causa"`
	Proposta ProposalResponse   `json:"proposta"`
}

// submitProposalHandler
//
//	@Summary	Envia proposta para um caso (somente ADVOGADO)
//	@Tags		propostas
//	@Accept		json
//	@Produce	json
//	@Param		body	body		submitProposalRequest	true	"proposta"
//	@Success	201		{object}	ProposalResponse
//	@Failure	400		{object}	apperr.Body
//	@Failure	403		{object}	apperr.Body
//	@Failure	409		{object}	apperr.Body
//	@Router		/propostas [post]
func submitProposalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := middleware.GetIdentity(r.Context())
		if !ok {
			apperr.Write(w, ErrUnauthenticated)
			return
		}

		var req submitProposalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.WriteMessage(w, http.StatusBadRequest, apperr.Body{Message: "JSON inválido."})
			return
		}

		value, err := decodeValue(req.SuggestedValue)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		p, err := svc.Submit(r.Context(), who, SubmitInput{
			CaseID:         req.CaseID,
			Message:        req.Message,
			SuggestedValue: value,
		})
		if err != nil {
			apperr.Write(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToResponse(p))
	}
}

// listProposalsHandler
//
//	@Summary	Lista propostas de um caso (somente o dono)
//	@Tags		propostas
//	@Produce	json
//	@Param		causa_id	query	string	true	"id do caso"
//	@Success	200			{array}	ProposalResponse
//	@Failure	403			{object}	apperr.Body
//	@Router		/propostas [get]
func listProposalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := middleware.GetIdentity(r.Context())
		if !ok {
			apperr.Write(w, ErrUnauthenticated)
			return
		}

		caseID := r.URL.Query().Get("causa_id")
		if caseID == "" {
			apperr.Write(w, fields.Invalid("causa_id", "causa_id é obrigatório."))
			return
		}

		items, err := svc.ListForCase(r.Context(), caseID, who)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		out := make([]ProposalResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// acceptProposalHandler
//
//	@Summary	Aceita uma proposta (dono do caso)
//	@Tags		propostas
//	@Produce	json
//	@Param		caseID		path		string	true	"id do caso"
//	@Param		proposalID	path		string	true	"id da proposta"
//	@Success	200			{object}	acceptResponse
//	@Failure	403			{object}	apperr.Body
//	@Failure	409			{object}	apperr.Body
//	@Router		/causas/{caseID}/propostas/{proposalID}/aceitar [post]
func acceptProposalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := middleware.GetIdentity(r.Context())
		if !ok {
			apperr.Write(w, ErrUnauthenticated)
			return
		}

		c, p, err := svc.Accept(r.Context(), chi.URLParam(r, "caseID"), chi.URLParam(r, "proposalID"), who)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, acceptResponse{
			Causa:    cases.ToResponse(c),
			Proposta: ToResponse(p),
		})
	}
}

func decodeValue(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fields.Invalid(valueField, "Valor deve ser numérico.")
		}
		return ParseValue(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fields.Invalid(valueField, "Valor deve ser numérico.")
	}
	if err := ValidateValue(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func ToResponse(p Proposal) ProposalResponse {
	return ProposalResponse{
		ID:             p.ID,
		CaseID:         p.CaseID,
		Message:        p.Message,
		SuggestedValue: p.SuggestedValue,
		Advogado:       lawyerSummary{ID: p.LawyerID, Name: p.LawyerName},
		CreatedAt:      p.CreatedAt,
		Accepted:       p.Accepted,
		AcceptedAt:     p.AcceptedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
