package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/engine"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/host"
	"github.com/go-drift/weave/pkg/logging"
	"github.com/go-drift/weave/pkg/surface/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// quitKeys end the viewer before input reaches the tree.
var quitKeys = map[string]bool{"Ctrl-C": true, "Esc": true}

func newViewCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "view <document>",
		Short: "Run a widget tree document in the terminal",
		Long: `View mounts a document on a terminal surface where one cell is one
logical unit, and routes mouse and keyboard input to it. Esc or Ctrl-C
quits, as does any handler bound to the "quit" action.

With runtime.debug set, the runtime's debug server listens on
runtime.debug_addr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readDocument(cmd, args[0], format)
			if err != nil {
				return err
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()
			screen.EnableMouse()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.view(ctx, screen, desc)
		},
	}
	addDocumentFlags(cmd, &format)
	cmd.Flags().Bool("debug", false, "serve runtime snapshots over HTTP")
	_ = a.v.BindPFlag("runtime.debug", cmd.Flags().Lookup("debug"))
	return cmd
}

// view runs desc on screen until ctx ends or a quit key arrives.
func (a *app) view(ctx context.Context, screen tcell.Screen, desc core.Description) error {
	log := logging.Named("view")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	surface := term.New(screen, term.Options{})
	h := host.New(host.Options{FPS: float64(a.cfg.Runtime.MaxFPS), Logger: logging.Named("host")})
	defer h.Close()

	rt, err := h.Create("main", surface, graphics.Offset{}, engine.Options{
		Logger: logging.Named("engine"),
		Actions: map[string]events.Handler{
			"quit": func(*events.Event) bool {
				cancel()
				return true
			},
		},
	})
	if err != nil {
		return err
	}
	if err := rt.Render(desc); err != nil {
		return err
	}

	if a.cfg.Runtime.Debug {
		d, err := rt.StartDebugServer(a.cfg.Runtime.DebugAddr)
		if err != nil {
			return err
		}
		log.Info("debug server", zap.Stringer("addr", d.Addr()))
	}

	in := term.NewInput(screen)
	defer in.Close()
	in.OnResize = func(int, int) {
		h.Dispatch(func() {
			surface.Sync()
			rt.Resize()
		})
	}
	return h.Run(ctx, quitFilter{in})
}

// quitFilter ends the input stream on a quit key.
type quitFilter struct {
	src host.InputSource
}

func (q quitFilter) Next(ctx context.Context) (events.Input, error) {
	in, err := q.src.Next(ctx)
	if err == nil && in.Type == events.KeyDown && quitKeys[in.Key] {
		return events.Input{}, io.EOF
	}
	return in, err
}
