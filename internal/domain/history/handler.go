package history

import (
	"encoding/json"
	"net/http"
	"time"

	"advogados-solidarios/internal/middleware"
	"advogados-solidarios/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/causas/historico", historyHandler(svc))
}

type RowResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"titulo"`
	Status      string    `json:"status"`
	DataCriacao time.Time `json:"dataCriacao"`
}

// historyHandler
//
//	@Summary	Histórico de casos do usuário autenticado
//	@Tags		causas
//	@Produce	json
//	@Param		status	query	string	false	"ABERTA, COM_PROPOSTAS, ACEITA ou CONCLUIDA"
//	@Success	200		{array}	RowResponse
//	@Failure	401		{object}	apperr.Body
//	@Router		/causas/historico [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := middleware.GetIdentity(r.Context())
		if !ok {
			apperr.Write(w, ErrUnauthenticated)
			return
		}

		rows, err := svc.ForViewer(r.Context(), who, r.URL.Query().Get("status"))
		if err != nil {
			apperr.Write(w, err)
			return
		}

		out := make([]RowResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, RowResponse{
				ID:          row.CaseID,
				Title:       row.Title,
				Status:      row.Status.WireName(),
				DataCriacao: row.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
