// Comando advogados: cliente de línea de comandos del servicio. Guarda la
// sesión en disco y consulta el gate antes de cada pantalla.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"advogados-solidarios/internal/client/api"
	"advogados-solidarios/internal/client/form"
	"advogados-solidarios/internal/client/gate"
	"advogados-solidarios/internal/client/session"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/fields"
	"advogados-solidarios/internal/platform/logger"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, message(err))
		os.Exit(1)
	}
}

const usage = `uso: advogados [flags] <comando> [args]

comandos:
  login EMAIL SENHA
  logout
  whoami
  cadastro-usuario NOME EMAIL SENHA
  cadastro-advogado NOME EMAIL SENHA OAB
  causas [BUSCA]
  causa ID
  nova-causa TITULO DESCRICAO
  propor CAUSA_ID MENSAGEM [VALOR]
  propostas CAUSA_ID
  aceitar CAUSA_ID PROPOSTA_ID
  concluir CAUSA_ID
  historico [STATUS]
`

// Respuestas del gate, con el texto que ve el usuario.
var (
	errLoginRequired   = apperr.New(apperr.ErrAuthenticationRequired, "Faça login para continuar.")
	errAlreadyLoggedIn = apperr.New(apperr.ErrInvalidState, "Você já está autenticado. Use logout primeiro.")
	errScreenDenied    = apperr.New(apperr.ErrPermissionDenied, "Você não tem acesso a esta tela.")
)

type app struct {
	client *api.Client
	store  *session.Store
	out    io.Writer
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("advogados", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { _, _ = fmt.Fprint(out, usage) }

	baseURL := fs.String("api", envOr("ADVOGADOS_API", "http://localhost:8080"), "URL do serviço")
	sessionFile := fs.String("session", defaultSessionFile(), "arquivo da sessão")
	timeout := fs.Duration("timeout", 10*time.Second, "timeout por requisição")
	verbose := fs.BoolP("verbose", "v", false, "logs de depuração")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("comando obrigatório")
	}

	level := logger.Warn
	if *verbose {
		level = logger.Debug
	}
	log, err := logger.New(logger.Options{Level: level, Format: logger.FormatText, App: "advogados-cli"})
	if err != nil {
		return err
	}

	client, err := api.New(api.Options{BaseURL: *baseURL, Timeout: *timeout, Logger: log})
	if err != nil {
		return err
	}
	defer client.Close()
	store := session.New(session.NewFilePersister(*sessionFile),
		session.WithValidator(client.Validate),
		session.WithLogger(log))
	defer store.Close()
	client.UseSession(store)

	a := &app{client: client, store: store, out: out}
	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		if err := need(args, 2); err != nil {
			return err
		}
		if err := a.screen(ctx, gate.LoginPath); err != nil {
			return err
		}
		who, err := a.client.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return a.printf("Bem-vindo(a), %s (%s)\n", who.Name, who.Role.WireName())

	case "logout":
		a.client.Logout(ctx)
		return a.printf("Sessão encerrada.\n")

	case "whoami":
		if err := a.screen(ctx, gate.DashboardPath); err != nil {
			return err
		}
		who, err := a.client.Me(ctx)
		if err != nil {
			return err
		}
		return a.printf("%s <%s> %s\n", who.Name, who.Email, who.Role.WireName())

	case "cadastro-usuario", "cadastro-advogado":
		lawyer := cmd == "cadastro-advogado"
		n := 3
		if lawyer {
			n = 4
		}
		if err := need(args, n); err != nil {
			return err
		}
		in := api.Registration{Name: args[0], Email: args[1], Password: args[2]}
		route := "/register/user"
		if lawyer {
			in.OAB = args[3]
			route = "/register/lawyer"
		}
		if err := a.screen(ctx, route); err != nil {
			return err
		}
		register := a.client.RegisterCitizen
		if lawyer {
			register = a.client.RegisterLawyer
		}
		acc, err := register(ctx, in)
		if err != nil {
			return err
		}
		return a.printf("Cadastro realizado: %s\n", acc.Email)

	case "causas":
		if err := a.screen(ctx, "/cases"); err != nil {
			return err
		}
		list, err := a.client.ListOpenCases(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return a.printf("Nenhuma causa aberta.\n")
		}
		for _, c := range list {
			owner := ""
			if c.Usuario != nil {
				owner = c.Usuario.Name
			}
			if err := a.printf("%s  %-13s  %s  (%s)\n", c.ID, c.Status.WireName(), c.Title, owner); err != nil {
				return err
			}
		}
		return nil

	case "causa":
		if err := need(args, 1); err != nil {
			return err
		}
		if err := a.screen(ctx, "/cases/"+args[0]); err != nil {
			return err
		}
		c, err := a.client.GetCase(ctx, args[0])
		if err != nil {
			return err
		}
		return a.printf("%s\n%s\n\n%s\n", c.Title, c.Status.WireName(), c.Description)

	case "nova-causa":
		if err := need(args, 2); err != nil {
			return err
		}
		if err := a.screen(ctx, "/submit-case"); err != nil {
			return err
		}
		title, desc := form.NewInput(fields.CaseTitle), form.NewInput(fields.CaseDescription)
		a.typeInto(title, args[0])
		a.typeInto(desc, args[1])
		if err := form.Validate(title, desc); err != nil {
			return err
		}
		c, err := a.client.SubmitCase(ctx, title.Value(), desc.Value())
		if err != nil {
			return err
		}
		return a.printf("Causa enviada: %s\n", c.ID)

	case "propor":
		if err := need(args, 2); err != nil {
			return err
		}
		if err := a.screen(ctx, "/cases/"+args[0]); err != nil {
			return err
		}
		msg := form.NewInput(fields.ProposalMessage)
		a.typeInto(msg, args[1])
		in := api.ProposalInput{CaseID: args[0], Message: msg.Value()}
		if len(args) > 2 {
			in.Value = args[2]
		}
		p, err := a.client.SubmitProposal(ctx, in)
		if err != nil {
			return err
		}
		return a.printf("Proposta enviada: %s\n", p.ID)

	case "propostas":
		if err := need(args, 1); err != nil {
			return err
		}
		if err := a.screen(ctx, "/causas/historico"); err != nil {
			return err
		}
		list, err := a.client.ListProposals(ctx, args[0])
		if err != nil {
			return err
		}
		for _, p := range list {
			value := "-"
			if p.SuggestedValue != nil {
				value = fmt.Sprintf("R$ %.2f", *p.SuggestedValue)
			}
			mark := ""
			if p.Accepted {
				mark = " [aceita]"
			}
			if err := a.printf("%s  %s  %s%s\n  %s\n", p.ID, p.Advogado.Name, value, mark, p.Message); err != nil {
				return err
			}
		}
		return nil

	case "aceitar":
		if err := need(args, 2); err != nil {
			return err
		}
		if err := a.screen(ctx, "/causas/historico"); err != nil {
			return err
		}
		res, err := a.client.AcceptProposal(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return a.printf("Proposta de %s aceita. Causa %s.\n", res.Proposal.Advogado.Name, res.Case.Status.WireName())

	case "concluir":
		if err := need(args, 1); err != nil {
			return err
		}
		if err := a.screen(ctx, "/causas/historico"); err != nil {
			return err
		}
		c, err := a.client.ConcludeCase(ctx, args[0])
		if err != nil {
			return err
		}
		return a.printf("Causa %s: %s\n", c.ID, c.Status.WireName())

	case "historico":
		if err := a.screen(ctx, "/causas/historico"); err != nil {
			return err
		}
		status := ""
		if len(args) > 0 {
			status = args[0]
		}
		rows, err := a.client.History(ctx, status)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return a.printf("Nenhuma causa no histórico.\n")
		}
		for _, r := range rows {
			if err := a.printf("%s  %-13s  %s  %s\n", r.ID, r.Status, r.DataCriacao.Format("02/01/2006"), r.Title); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("comando desconhecido: %s", cmd)
}

// screen restaura la sesión y pregunta al gate si la ruta se puede abrir.
func (a *app) screen(ctx context.Context, route string) error {
	decided := make(chan gate.Decision, 1)
	g := gate.NewGuard(a.store, nil, route, func(_ string, d gate.Decision) {
		// otra pantalla u otra sesión: las listas en vuelo ya no sirven
		a.client.Invalidate()
		if d.Kind == gate.Pending {
			return
		}
		select {
		case decided <- d:
		default:
		}
	})
	defer g.Close()

	a.store.Restore(ctx)

	var d gate.Decision
	select {
	case d = <-decided:
	case <-ctx.Done():
		return ctx.Err()
	}

	switch {
	case d.Kind == gate.Allow:
		return nil
	case d.Target == gate.LoginPath:
		return errLoginRequired
	case gate.IsAuthEntry(route):
		return errAlreadyLoggedIn
	default:
		return errScreenDenied
	}
}

// typeInto avisa cuando el texto fue recortado, como el contador del input.
func (a *app) typeInto(in *form.Input, s string) {
	in.Type(s)
	if in.Value() != s {
		_ = a.printf("Aviso: %s recortado para %d caracteres.\n", in.Field(), len([]rune(in.Value())))
	}
}

func (a *app) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(a.out, format, args...)
	return err
}

func need(args []string, n int) error {
	if len(args) < n {
		return errors.New("argumentos insuficientes; use --help")
	}
	return nil
}

// message prefiere el texto pensado para el usuario.
func message(err error) string {
	var ae *api.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	var ve *fields.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "advogados-solidarios", "session.json")
}
