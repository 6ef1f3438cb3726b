// Package api es el cliente del contrato HTTP del servicio. Toma la
// credencial del session.Store y lo desloguea ante un 401.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"advogados-solidarios/internal/client/async"
	"advogados-solidarios/internal/client/session"
	"advogados-solidarios/internal/domain/accounts"
	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/history"
	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/domain/proposals"
	"advogados-solidarios/internal/platform/fields"
	"advogados-solidarios/internal/platform/httpclient"
	"advogados-solidarios/internal/platform/logger"
)

var (
	// ErrBusy: ya hay un envío en curso (el botón de enviar está deshabilitado).
	ErrBusy = errors.New("api: submit already in progress")
	// ErrStale: la respuesta llegó después de una navegación o de una lista más nueva.
	ErrStale = errors.New("api: response superseded")
)

type Options struct {
	BaseURL string
	// Timeout por request; 0 => httpclient.DefaultTimeout (10s).
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    logger.Logger
	// MaxConcurrent limita las operaciones de casos en paralelo; 0 => 4.
	MaxConcurrent int64
}

type Client struct {
	http    *httpclient.Client
	session *session.Store
	log     logger.Logger

	// cambios sobre un mismo caso salen en el orden en que se pidieron
	perCase *async.KeyedQueue
	submit  async.InFlight
	views   async.Latest
}

func New(opts Options) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, err
	}
	if opts.Transport != nil {
		hc.HTTP.Transport = opts.Transport
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		http:    hc,
		log:     log.With(map[string]any{"module": "api"}),
		perCase: async.NewKeyedQueue(opts.MaxConcurrent),
	}, nil
}

// Close espera las operaciones de casos que siguen en cola.
func (c *Client) Close() { c.perCase.Close() }

// Invalidate descarta las listas en vuelo. Se llama al navegar.
func (c *Client) Invalidate() { c.views.Invalidate() }

func (c *Client) onCase(ctx context.Context, caseID string, fn func(ctx context.Context) error) error {
	return <-c.perCase.Submit(ctx, "case:"+caseID, fn)
}

func (c *Client) startSubmit() error {
	if !c.submit.TryStart() {
		return ErrBusy
	}
	return nil
}

// list trae una vista; solo la respuesta del último pedido se entrega.
func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	t := c.views.Begin()
	got := []T{}
	err := c.do(ctx, http.MethodGet, path, nil, &got)

	var out []T
	if !c.views.Apply(t, func() { out = got }) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UseSession conecta el Store. Se hace después de New porque el Store
// recibe c.Validate como validador.
func (c *Client) UseSession(s *session.Store) { c.session = s }

func (c *Client) credential() string {
	if c.session == nil {
		return ""
	}
	return c.session.Snapshot().Credential
}

// do manda la credencial de la sesión. Un 401 con credencial invalida la sesión.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	token := c.credential()
	err := c.http.DoJSON(ctx, method, path, httpclient.Bearer(token), in, out)
	if err == nil {
		return nil
	}

	ae := translate(err)
	if ae.Kind == KindAuthenticationRequired && token != "" && c.session != nil {
		c.log.Info("credential rejected, logging out", map[string]any{"path": path})
		c.session.Logout(context.WithoutCancel(ctx))
	}
	if ae.Kind == KindNetwork {
		c.log.Warn("request failed", map[string]any{"method": method, "path": path, "err": err})
	}
	return ae
}

// loginWire admite las variantes de rol que devuelven distintos backends.
type loginWire struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	User  *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"user,omitempty"`
	Authorities []struct {
		Authority string `json:"authority"`
	} `json:"authorities"`
}

// Login autentica y reemplaza la sesión.
func (c *Client) Login(ctx context.Context, email, password string) (identity.Identity, error) {
	email, err := fields.NormalizeEmail(email)
	if err != nil {
		return identity.Identity{}, err
	}
	// igual que el input del registro: lo que pasa de 50 no se guardó
	password = fields.Password.Clip(password)
	if strings.TrimSpace(password) == "" {
		return identity.Identity{}, fields.Invalid(fields.Password.Field, fields.Password.MinMessage)
	}

	var resp loginWire
	err = c.http.DoJSON(ctx, http.MethodPost, "/login", nil,
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return identity.Identity{}, translate(err)
	}

	src := identity.LoginRoleSource{Role: resp.Role}
	who := identity.Identity{ID: resp.ID, Name: resp.Name, Email: resp.Email}
	if resp.User != nil {
		src.UserRole = resp.User.Role
		if who.ID == "" {
			who.ID = resp.User.ID
		}
		if who.Name == "" {
			who.Name = resp.User.Name
		}
	}
	for _, a := range resp.Authorities {
		src.Authorities = append(src.Authorities, a.Authority)
	}
	who.Role, err = identity.NormalizeLoginRole(src)
	if err != nil {
		return identity.Identity{}, err
	}

	if c.session != nil {
		if err := c.session.Login(ctx, resp.Token, who); err != nil {
			return identity.Identity{}, err
		}
	}
	return who, nil
}

// Logout avisa al servidor y limpia la sesión local aunque el servidor falle.
func (c *Client) Logout(ctx context.Context) {
	if token := c.credential(); token != "" {
		if err := c.http.DoJSON(ctx, http.MethodPost, "/logout", httpclient.Bearer(token), nil, nil); err != nil {
			c.log.Warn("logout: server call failed", map[string]any{"err": err})
		}
	}
	if c.session != nil {
		c.session.Logout(ctx)
	}
}

func (c *Client) Me(ctx context.Context) (identity.Identity, error) {
	var resp accounts.AccountResponse
	if err := c.do(ctx, http.MethodGet, "/me", nil, &resp); err != nil {
		return identity.Identity{}, err
	}
	return toIdentity(resp)
}

// Validate es el session.Validator: GET /me con una credencial dada.
// No toca la sesión; un 401 se informa como session.ErrCredentialRejected.
func (c *Client) Validate(ctx context.Context, credential string) (identity.Identity, error) {
	var resp accounts.AccountResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/me", httpclient.Bearer(credential), nil, &resp)
	if err != nil {
		ae := translate(err)
		if ae.Kind == KindAuthenticationRequired {
			return identity.Identity{}, errors.Join(session.ErrCredentialRejected, ae)
		}
		return identity.Identity{}, ae
	}
	return toIdentity(resp)
}

func toIdentity(a accounts.AccountResponse) (identity.Identity, error) {
	role, err := identity.ParseRole(a.Role)
	if err != nil {
		return identity.Identity{}, err
	}
	return identity.Identity{ID: a.ID, Name: a.Name, Email: a.Email, Role: role}, nil
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OAB      string `json:"oab,omitempty"`
}

func (r Registration) normalize(lawyer bool) (Registration, error) {
	var err error
	if r.Name, err = fields.Name.Normalize(r.Name); err != nil {
		return r, err
	}
	if r.Email, err = fields.NormalizeEmail(r.Email); err != nil {
		return r, err
	}
	if r.Password, err = fields.NormalizePassword(r.Password); err != nil {
		return r, err
	}
	if !lawyer {
		r.OAB = ""
		return r, nil
	}
	r.OAB, err = fields.NormalizeOAB(r.OAB)
	return r, err
}

func (c *Client) RegisterCitizen(ctx context.Context, in Registration) (accounts.AccountResponse, error) {
	return c.register(ctx, "/usuarios", in, false)
}

func (c *Client) RegisterLawyer(ctx context.Context, in Registration) (accounts.AccountResponse, error) {
	return c.register(ctx, "/advogados", in, true)
}

func (c *Client) register(ctx context.Context, path string, in Registration, lawyer bool) (accounts.AccountResponse, error) {
	in, err := in.normalize(lawyer)
	if err != nil {
		return accounts.AccountResponse{}, err
	}
	var out accounts.AccountResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, path, nil, in, &out); err != nil {
		return accounts.AccountResponse{}, translate(err)
	}
	return out, nil
}

// SubmitCase valida localmente antes de ir a la red.
func (c *Client) SubmitCase(ctx context.Context, title, description string) (cases.CaseResponse, error) {
	if err := c.startSubmit(); err != nil {
		return cases.CaseResponse{}, err
	}
	defer c.submit.Done()

	title, err := fields.CaseTitle.Normalize(title)
	if err != nil {
		return cases.CaseResponse{}, err
	}
	description, err = fields.CaseDescription.Normalize(description)
	if err != nil {
		return cases.CaseResponse{}, err
	}

	var out cases.CaseResponse
	err = c.do(ctx, http.MethodPost, "/causas", map[string]string{"title": title, "description": description}, &out)
	return out, err
}

func (c *Client) ListOpenCases(ctx context.Context, q string) ([]cases.CaseResponse, error) {
	path := "/causas"
	if q = fields.Search.Clip(strings.TrimSpace(q)); q != "" {
		path += "?q=" + url.QueryEscape(q)
	}
	return list[cases.CaseResponse](ctx, c, path)
}

func (c *Client) GetCase(ctx context.Context, id string) (cases.CaseResponse, error) {
	var out cases.CaseResponse
	err := c.do(ctx, http.MethodGet, "/causas/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ConcludeCase(ctx context.Context, id string) (cases.CaseResponse, error) {
	var out cases.CaseResponse
	err := c.onCase(ctx, id, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "/causas/"+url.PathEscape(id)+"/concluir", nil, &out)
	})
	return out, err
}

// History acepta el status en cualquiera de sus nombres; vacío => todos.
func (c *Client) History(ctx context.Context, status string) ([]history.RowResponse, error) {
	path := "/causas/historico"
	if status = strings.TrimSpace(status); status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	return list[history.RowResponse](ctx, c, path)
}

type ProposalInput struct {
	CaseID  string
	Message string
	// Value es el texto del input; vacío => sin valor sugerido.
	Value string
}

func (c *Client) SubmitProposal(ctx context.Context, in ProposalInput) (proposals.ProposalResponse, error) {
	if err := c.startSubmit(); err != nil {
		return proposals.ProposalResponse{}, err
	}
	defer c.submit.Done()

	msg, err := fields.ProposalMessage.Normalize(in.Message)
	if err != nil {
		return proposals.ProposalResponse{}, err
	}
	value, err := proposals.ParseValue(in.Value)
	if err != nil {
		return proposals.ProposalResponse{}, err
	}

	body := struct {
		CaseID string   `json:"causaId"`
		Msg    string   `json:"mensagem"`
		Value  *float64 `json:"valorSugerido,omitempty"`
	}{in.CaseID, msg, value}

	var out proposals.ProposalResponse
	err = c.onCase(ctx, in.CaseID, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "/propostas", body, &out)
	})
	return out, err
}

func (c *Client) ListProposals(ctx context.Context, caseID string) ([]proposals.ProposalResponse, error) {
	return list[proposals.ProposalResponse](ctx, c, "/propostas?causa_id="+url.QueryEscape(caseID))
}

type Acceptance struct {
	Case     cases.CaseResponse         `json:"causa"`
	Proposal proposals.ProposalResponse `json:"proposta"`
}

func (c *Client) AcceptProposal(ctx context.Context, caseID, proposalID string) (Acceptance, error) {
	var out Acceptance
	path := "/causas/" + url.PathEscape(caseID) + "/propostas/" + url.PathEscape(proposalID) + "/aceitar"
	err := c.onCase(ctx, caseID, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, path, nil, &out)
	})
	return out, err
}
