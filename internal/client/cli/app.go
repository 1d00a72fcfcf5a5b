// Package cli is the interactive terminal front end of the streamgate client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"streamgate/internal/client"
	"streamgate/internal/model"
)

// Session is the login state machine the REPL drives
type Session interface {
	State() client.State
	Session() *model.LocalSession
	LoginSubscriber(ctx context.Context, code string) error
	LoginAdmin(ctx context.Context, password string) error
	Logout() error
	Notices() <-chan client.Notice
}

// Catalog is the read side of the server API
type Catalog interface {
	Movies(ctx context.Context, sess *model.LocalSession, query string) ([]model.Movie, error)
	Welcome(ctx context.Context) (*model.WelcomeMessage, error)
}

// App is the client REPL
type App struct {
	sess    Session
	catalog Catalog
	in      *bufio.Reader
	mu      sync.Mutex
	out     io.Writer
}

// NewApp creates an App reading commands from in and writing to out
func NewApp(sess Session, catalog Catalog, in io.Reader, out io.Writer) *App {
	return &App{sess: sess, catalog: catalog, in: bufio.NewReader(in), out: out}
}

func (a *App) printf(format string, args ...interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// Run executes commands until EOF, "quit" or ctx is done
func (a *App) Run(ctx context.Context) {
	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.watchNotices(watchCtx)

	if msg, err := a.catalog.Welcome(ctx); err == nil && msg.Message != "" {
		a.printf("%s\n", msg.Message)
	}

	for ctx.Err() == nil {
		line, err := readLine(a.in, fmt.Sprintf("sg (%s)> ", a.sess.State()), a.out)
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			a.help()
		case "pin":
			a.loginPin(ctx, fields[1:])
		case "admin":
			a.loginAdmin(ctx)
		case "movies":
			a.movies(ctx, strings.Join(fields[1:], " "))
		case "status":
			a.status()
		case "logout":
			if err := a.sess.Logout(); err != nil {
				a.printf("logout: %v\n", err)
			}
		case "quit", "exit":
			return
		default:
			a.printf("unknown command %q, try help\n", fields[0])
		}
	}
}

func (a *App) watchNotices(ctx context.Context) {
	for {
		select {
		case n := <-a.sess.Notices():
			a.printf("\n%s\n", n.Message)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) help() {
	a.printf("commands: pin [CODE], admin, movies [QUERY], status, logout, quit\n")
}

func (a *App) loginPin(ctx context.Context, args []string) {
	code := ""
	if len(args) > 0 {
		code = args[0]
	} else {
		var err error
		if code, err = readLine(a.in, "PIN: ", a.out); err != nil {
			return
		}
	}
	if err := a.sess.LoginSubscriber(ctx, code); err != nil {
		a.printf("login failed: %s\n", describe(err))
		return
	}
	a.printf("welcome, %s\n", a.sess.Session().OwnerName)
}

func (a *App) loginAdmin(ctx context.Context) {
	password, err := readSecret("admin password: ", a.out)
	if err != nil {
		a.printf("read password: %v\n", err)
		return
	}
	if err := a.sess.LoginAdmin(ctx, password); err != nil {
		a.printf("login failed: %s\n", describe(err))
		return
	}
	a.printf("admin session until %s\n", a.sess.Session().ExpiryDate.Local().Format("2006-01-02 15:04"))
}

func (a *App) movies(ctx context.Context, query string) {
	sess := a.sess.Session()
	if sess == nil {
		a.printf("log in first\n")
		return
	}
	movies, err := a.catalog.Movies(ctx, sess, query)
	if err != nil {
		a.printf("movies: %s\n", describe(err))
		return
	}
	if len(movies) == 0 {
		a.printf("no movies found\n")
		return
	}
	for _, m := range movies {
		a.printf("%-30s %4s  %s\n", m.Title, m.Year, m.Genre)
	}
}

func (a *App) status() {
	sess := a.sess.Session()
	if sess == nil {
		a.printf("logged out\n")
		return
	}
	a.printf("%s session, expires %s\n", a.sess.State(), sess.ExpiryDate.Local().Format("2006-01-02 15:04"))
}

// describe turns client errors into user-facing text
func describe(err error) string {
	if errors.Is(err, client.ErrAlreadyLoggedIn) {
		return err.Error()
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return "server unreachable, try again later"
	}
	switch apiErr.Code {
	case model.ErrCodeRateLimited:
		return fmt.Sprintf("too many attempts, try again in %d minutes", apiErr.RemainingTime)
	case model.ErrCodeNotFound:
		return "unknown PIN"
	case model.ErrCodeExpired:
		return "this PIN has expired"
	case model.ErrCodeInactive:
		return "this PIN has been deactivated"
	case model.ErrCodeInvalidPassword:
		return "wrong password"
	case model.ErrCodeSessionSuperseded:
		return "this PIN is now in use on another device"
	}
	return apiErr.Code
}
