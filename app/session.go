package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rorycl/roster/console"
	"github.com/rorycl/roster/roster"
)

// state is a position in the menu loop.
type state int

const (
	stateMenu state = iota
	stateRegister
	stateList
	stateDelete
	stateExit
)

var stateName = map[state]string{
	stateMenu:     "menu",
	stateRegister: "register",
	stateList:     "list",
	stateDelete:   "delete",
	stateExit:     "exit",
}

// String returns the state name.
func (s state) String() string {
	return stateName[s]
}

// menuChoices maps menu numbers to the state they select.
var menuChoices = map[int]state{
	1: stateRegister,
	2: stateList,
	3: stateDelete,
	4: stateExit,
}

const menu = `Bem-vindo ao Employee Management Tool
1 - Cadastrar funcionário
2 - Listar funcionários cadastrados
3 - Excluir funcionário
4 - Sair
`

// SessionOptions configure a Session.
type SessionOptions struct {
	// DataFile is loaded when the session starts and saved when the operator
	// chooses to leave.
	DataFile string

	// Pause waits for Enter after each operation.
	Pause bool

	// ExternalChange, if set, is called once before saving and reports
	// whether another program changed the data file during the session.
	ExternalChange func() bool

	// OnSaved, if set, is called with the saved roster after a successful
	// save. Its error is reported to the operator but does not fail the
	// session, since the data file is already written.
	OnSaved func(ctx context.Context, employees []roster.Employee) error
}

// Session is one interactive run of the tool: the roster plus the operator's
// input and output.
type Session struct {
	opts  SessionOptions
	in    *console.Reader
	out   io.Writer
	log   *slog.Logger
	store *roster.Store
}

// NewSession returns a session reading operator answers from in and writing
// to out. The roster is empty until Run loads it.
func NewSession(in io.Reader, out io.Writer, logger *slog.Logger, opts SessionOptions) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.DataFile == "" {
		opts.DataFile = roster.DefaultFile
	}
	return &Session{
		opts:  opts,
		in:    console.NewReader(in, out),
		out:   out,
		log:   logger,
		store: roster.NewStore(nil),
	}
}

// Store returns the session's roster.
func (s *Session) Store() *roster.Store {
	return s.store
}

// Run loads the data file and runs the menu until the operator leaves, at
// which point the roster is saved. If input ends or ctx is cancelled first,
// Run returns an error and nothing is saved.
func (s *Session) Run(ctx context.Context) error {
	employees, err := roster.Load(s.opts.DataFile, s.log)
	if err != nil {
		return err
	}
	s.store = roster.NewStore(employees)
	s.log.Info("roster loaded", "file", s.opts.DataFile, "employees", s.store.Len())

	st := stateMenu
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("session stopped: %w", err)
		}
		s.log.Debug("state", "state", st)

		switch st {
		case stateMenu:
			st, err = s.menu()
		case stateRegister:
			err = s.Register()
			st = stateMenu
		case stateList:
			err = s.List()
			st = stateMenu
		case stateDelete:
			err = s.Delete()
			st = stateMenu
		case stateExit:
			return s.save(ctx)
		}
		if err != nil {
			return err
		}
	}
}

// menu shows the options and returns the state chosen.
func (s *Session) menu() (state, error) {
	fmt.Fprint(s.out, menu)
	choice, err := s.in.ReadInt("Escolha uma opção: ")
	if err != nil {
		return stateMenu, err
	}
	next, ok := menuChoices[choice]
	if !ok {
		fmt.Fprintln(s.out, msgInvalidOption)
		return stateMenu, nil
	}
	return next, nil
}

// pause waits for Enter if the session is configured to.
func (s *Session) pause() error {
	if !s.opts.Pause {
		return nil
	}
	return s.in.Pause()
}

// save writes the roster to the data file.
func (s *Session) save(ctx context.Context) error {
	if s.opts.ExternalChange != nil && s.opts.ExternalChange() {
		s.log.Warn("data file was changed by another program and will be overwritten", "file", s.opts.DataFile)
		fmt.Fprintf(s.out, msgExternalChange, s.opts.DataFile)
	}

	employees := s.store.All()
	if err := roster.Save(s.opts.DataFile, employees); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	s.log.Info("roster saved", "file", s.opts.DataFile, "employees", len(employees))

	if s.opts.OnSaved != nil {
		if err := s.opts.OnSaved(ctx, employees); err != nil {
			s.log.Error("post-save action failed", "error", err)
			fmt.Fprintln(s.out, msgArchiveFailed)
		}
	}
	return nil
}
