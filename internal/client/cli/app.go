package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/session"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
)

// Session is the session manager surface used by the CLI.
type Session interface {
	session.Recoverer
	session.Verifier

	Signup(ctx context.Context, in session.SignupInput) models.Result
	Signin(ctx context.Context, email, password string) models.Result
	Signout(ctx context.Context) models.Result
	ChangePassword(ctx context.Context, oldPassword, newPassword string) models.Result
}

// TodoList is the todo manager surface used by the CLI.
type TodoList interface {
	Load(ctx context.Context) error
	Items() []models.Item
	Add(ctx context.Context, title string) (models.Item, error)
	RemoveAt(ctx context.Context, i int) error
	Edit(i int) error
	SetBuffer(text string) error
	Buffer() string
	Editing() (int, bool)
	CancelEdit()
	Save(ctx context.Context) (models.Item, error)
	Toggle(ctx context.Context, i int) (models.Item, error)
	Reset()
}

// Watcher runs in the background and reports connectivity.
type Watcher interface {
	Run(ctx context.Context)
	Mode() session.Mode
}

// Deps are the collaborators of an App.
type Deps struct {
	Session Session
	Todos   TodoList
	Watcher Watcher
	Logger  logging.Logger

	// RemoteList means the list lives on the server and needs a session.
	RemoteList bool

	In  io.Reader
	Out io.Writer
}

type App struct {
	session    Session
	verify     *session.VerificationFlow
	recovery   *session.RecoveryFlow
	todos      TodoList
	watcher    Watcher
	logger     logging.Logger
	remoteList bool

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(d Deps) *App {
	a := &App{
		session:    d.Session,
		verify:     session.NewVerificationFlow(d.Session),
		recovery:   session.NewRecoveryFlow(d.Session),
		todos:      d.Todos,
		watcher:    d.Watcher,
		logger:     d.Logger,
		remoteList: d.RemoteList,
		out:        d.Out,
	}

	in := d.In
	if in == nil {
		in = os.Stdin
	}
	a.reader = bufio.NewReader(in)
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}
	return a
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated
}

// canUseList reports whether list commands are available right now.
func (a *App) canUseList() bool {
	return !a.remoteList || a.isLoggedIn()
}

func (a *App) getStatus() string {
	s := ""
	if id := a.session.Snapshot().Identity; id != nil {
		s = id.Email + " "
	}
	if a.watcher != nil && a.watcher.Mode() != session.ModeUnknown {
		s = s + string(a.watcher.Mode())
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run loads the list when it is available, starts the watcher and blocks in
// the REPL until the user exits or the input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to gophtodo (type 'help' for commands)")

	if a.canUseList() {
		if err := a.todos.Load(ctx); err != nil {
			a.println("Could not load todos:", err)
		}
	}

	if a.watcher != nil {
		go a.watcher.Run(ctx)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
