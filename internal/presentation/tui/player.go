package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/scheduler"
	"github.com/aretw0/epsilon/pkg/view"
	"github.com/muesli/termenv"
)

// Engine is what the player drives.
type Engine interface {
	Play(ctx context.Context) domain.State
	Subscribe(l scheduler.Listener) func()
	View(s domain.State, lang string) view.View
}

// Player animates the sequencer in a terminal.
type Player struct {
	Engine  Engine
	Catalog *locale.Catalog
	Lang    string
	// Loop keeps playing across iterations until the context ends.
	Loop bool
	// Render turns markdown into terminal output; nil prints one status line per step.
	Render func(string) (string, error)

	out *termenv.Output
}

// NewPlayer creates a player writing to w.
func NewPlayer(engine Engine, catalog *locale.Catalog, w io.Writer) *Player {
	return &Player{
		Engine:  engine,
		Catalog: catalog,
		Lang:    locale.Default,
		out:     termenv.NewOutput(w),
	}
}

// Run starts the animation and draws every snapshot until the run completes
// or ctx is cancelled.
func (p *Player) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := make(chan domain.State, 16)
	unsubscribe := p.Engine.Subscribe(func(s domain.State) {
		select {
		case states <- s:
		default:
		}
	})
	defer unsubscribe()

	p.Engine.Play(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-states:
			if err := p.draw(s); err != nil {
				return err
			}
			if !p.Loop && !s.Running {
				return nil
			}
		}
	}
}

func (p *Player) draw(s domain.State) error {
	v := p.Engine.View(s, p.Lang)
	if p.Render == nil {
		_, err := fmt.Fprintln(p.out, StatusLine(p.out.Profile, v))
		return err
	}

	rendered, err := p.Render(Markdown(v, p.Catalog))
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	p.out.ClearScreen()
	_, err = fmt.Fprint(p.out, rendered)
	return err
}
