package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"advogados-solidarios/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, err := router.NewRouter(router.Options{JWTSecret: "test-secret", LoginRatePerMin: 100})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_CaseLifecycle(t *testing.T) {
	ts := newServer(t)

	// 1) Cadastro e login
	register(t, ts.URL, "/usuarios", map[string]any{"name": "Maria Cidadã", "email": "maria@example.com", "password": "segredo123"})
	register(t, ts.URL, "/advogados", map[string]any{"name": "Dr. Souza", "email": "souza@example.com", "password": "segredo123", "oab": "123456/SP"})

	citizen := login(t, ts.URL, "maria@example.com", "segredo123")
	lawyer := login(t, ts.URL, "souza@example.com", "segredo123")

	// 2) Cidadão submete caso
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/causas", citizen, map[string]any{
			"title":       "Teste Recebimento",
			"description": "Descrição com mais de vinte caracteres.",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating case, got %d body=%s", st, string(body))
		}
		mustJSON(t, body, &created)
		if created.Status != "OPEN" {
			t.Fatalf("expected OPEN, got %s", created.Status)
		}
	}

	// 3) Advogado vê o caso aberto e envia proposta
	{
		st, body := doReq(t, ts.URL, "GET", "/causas?q=recebimento", lawyer, nil)
		if st != http.StatusOK || !strings.Contains(string(body), created.ID) {
			t.Fatalf("expected case in open list, got %d body=%s", st, string(body))
		}
	}

	var proposalID string
	{
		st, body := doReq(t, ts.URL, "POST", "/propostas", lawyer, map[string]any{
			"causaId":       created.ID,
			"mensagem":      "Proposta detalhada de serviço",
			"valorSugerido": 200,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating proposal, got %d body=%s", st, string(body))
		}
		var p struct {
			ID    string  `json:"id"`
			Valor float64 `json:"valorSugerido"`
		}
		mustJSON(t, body, &p)
		proposalID = p.ID
		if p.Valor != 200 {
			t.Fatalf("expected value 200, got %v", p.Valor)
		}
	}

	// proposta duplicada do mesmo advogado
	{
		st, _ := doReq(t, ts.URL, "POST", "/propostas", lawyer, map[string]any{
			"causaId":  created.ID,
			"mensagem": "Outra proposta qualquer",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on duplicate proposal, got %d", st)
		}
	}

	if got := caseStatus(t, ts.URL, citizen, created.ID); got != "HAS_PROPOSALS" {
		t.Fatalf("expected HAS_PROPOSALS, got %s", got)
	}

	// 4) Advogado não lista propostas; cidadão sim
	{
		st, _ := doReq(t, ts.URL, "GET", "/propostas?causa_id="+created.ID, lawyer, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for lawyer listing proposals, got %d", st)
		}
		st, body := doReq(t, ts.URL, "GET", "/propostas?causa_id="+created.ID, citizen, nil)
		if st != http.StatusOK || !strings.Contains(string(body), "Dr. Souza") {
			t.Fatalf("expected owner to list proposals, got %d body=%s", st, string(body))
		}
	}

	// 5) Advogado não pode aceitar
	acceptPath := "/causas/" + created.ID + "/propostas/" + proposalID + "/aceitar"
	{
		st, _ := doReq(t, ts.URL, "POST", acceptPath, lawyer, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non-owner accept, got %d", st)
		}
	}

	// 6) Cidadão aceita
	{
		st, body := doReq(t, ts.URL, "POST", acceptPath, citizen, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accepting, got %d body=%s", st, string(body))
		}
		var out struct {
			Causa struct {
				Status string `json:"status"`
			} `json:"causa"`
			Proposta struct {
				Aceita bool `json:"aceita"`
			} `json:"proposta"`
		}
		mustJSON(t, body, &out)
		if out.Causa.Status != "ACCEPTED" || !out.Proposta.Aceita {
			t.Fatalf("unexpected accept response: %s", string(body))
		}
	}

	// 7) Segundo aceite falha sem mudar nada
	{
		st, _ := doReq(t, ts.URL, "POST", acceptPath, citizen, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on second accept, got %d", st)
		}
	}

	// 8) Histórico com filtro por status de wire
	{
		st, body := doReq(t, ts.URL, "GET", "/causas/historico?status=aceita", citizen, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on history, got %d", st)
		}
		var rows []struct {
			ID     string `json:"id"`
			Titulo string `json:"titulo"`
			Status string `json:"status"`
		}
		mustJSON(t, body, &rows)
		if len(rows) != 1 || rows[0].Status != "ACEITA" || rows[0].Titulo != "Teste Recebimento" {
			t.Fatalf("unexpected history rows: %s", string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/causas/historico", lawyer, nil)
		if st != http.StatusOK || !strings.Contains(string(body), created.ID) {
			t.Fatalf("expected lawyer history to include proposed case, got %d body=%s", st, string(body))
		}
	}

	// 9) Concluir
	{
		st, body := doReq(t, ts.URL, "POST", "/causas/"+created.ID+"/concluir", citizen, nil)
		if st != http.StatusOK || !strings.Contains(string(body), "CONCLUDED") {
			t.Fatalf("expected 200 concluding, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_LawyerCannotSubmitCase(t *testing.T) {
	ts := newServer(t)
	register(t, ts.URL, "/advogados", map[string]any{"name": "Dr. Lima", "email": "lima@example.com", "password": "segredo123", "oab": "98765"})
	lawyer := login(t, ts.URL, "lima@example.com", "segredo123")

	st, _ := doReq(t, ts.URL, "POST", "/causas", lawyer, map[string]any{
		"title":       "Caso indevido",
		"description": "Advogado tentando abrir um caso.",
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", st)
	}
}

func TestHTTP_ValidationMessages(t *testing.T) {
	ts := newServer(t)
	register(t, ts.URL, "/usuarios", map[string]any{"name": "Maria", "email": "m@example.com", "password": "segredo123"})
	citizen := login(t, ts.URL, "m@example.com", "segredo123")

	st, body := doReq(t, ts.URL, "POST", "/causas", citizen, map[string]any{
		"title":       "abc",
		"description": "Descrição com mais de vinte caracteres.",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", st)
	}
	var e struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	mustJSON(t, body, &e)
	if e.Field != "title" || !strings.Contains(e.Message, "mínimo 5") {
		t.Fatalf("unexpected error body: %s", string(body))
	}
}

func TestHTTP_LogoutRevokesToken(t *testing.T) {
	ts := newServer(t)
	register(t, ts.URL, "/usuarios", map[string]any{"name": "Maria", "email": "m@example.com", "password": "segredo123"})
	token := login(t, ts.URL, "m@example.com", "segredo123")

	if st, _ := doReq(t, ts.URL, "GET", "/me", token, nil); st != http.StatusOK {
		t.Fatalf("expected 200 on /me, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/logout", token, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 on logout, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/me", token, nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", st)
	}
	// idempotente
	if st, _ := doReq(t, ts.URL, "POST", "/logout", token, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 on second logout, got %d", st)
	}
}

func TestHTTP_LoginWrongPassword(t *testing.T) {
	ts := newServer(t)
	register(t, ts.URL, "/usuarios", map[string]any{"name": "Maria", "email": "m@example.com", "password": "segredo123"})

	st, body := doReq(t, ts.URL, "POST", "/login", "", map[string]any{"email": "m@example.com", "password": "errada"})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", st)
	}
	if !strings.Contains(string(body), "message") {
		t.Fatalf("expected {message} body, got %s", string(body))
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := newServer(t)

	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 on health, got %d", st)
	}
	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), "advogados_http_requests_total") {
		t.Fatalf("expected metrics output, got %d", st)
	}
}

// -------------------------
// Helpers
// -------------------------

func register(t *testing.T, baseURL, path string, body map[string]any) {
	t.Helper()
	st, b := doReq(t, baseURL, "POST", path, "", body)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 on %s, got %d body=%s", path, st, string(b))
	}
}

func login(t *testing.T, baseURL, email, password string) string {
	t.Helper()
	st, b := doReq(t, baseURL, "POST", "/login", "", map[string]any{"email": email, "password": password})
	if st != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d body=%s", st, string(b))
	}
	var out struct {
		Token string `json:"token"`
	}
	mustJSON(t, b, &out)
	if out.Token == "" {
		t.Fatalf("expected token in login response")
	}
	return out.Token
}

func caseStatus(t *testing.T, baseURL, token, caseID string) string {
	t.Helper()
	st, b := doReq(t, baseURL, "GET", "/causas/"+caseID, token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 getting case, got %d body=%s", st, string(b))
	}
	var c struct {
		Status string `json:"status"`
	}
	mustJSON(t, b, &c)
	return c.Status
}

func doReq(t *testing.T, baseURL, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func mustJSON(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, string(b))
	}
}
