// Package ebiten drives a Scheduler from the Ebiten game loop with the Dear
// ImGui overlay drawn on top.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/realm/ecs"
	"github.com/plus3/realm/ecs/debugui"
	"go.uber.org/zap"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// It is stored as a resource so systems can reach the backend.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Game implements ebiten.Game: every Update runs one scheduler frame between
// the ImGui BeginFrame and EndFrame calls.
type Game struct {
	scheduler *ecs.Scheduler
	timer     *debugui.FrameTimer

	// DrawWorld renders game content below the overlay.
	DrawWorld func(screen *ebiten.Image)
}

// NewGame stores backend as a resource of s and returns a Game driving s.
func NewGame(s *ecs.Scheduler, backend *ebitenbackend.EbitenBackend) *Game {
	ecs.InsertResource(s.Resources(), ImguiBackend{EbitenBackend: backend})
	return &Game{
		scheduler: s,
		timer:     debugui.NewFrameTimer(),
	}
}

func (g *Game) backend() *ImguiBackend {
	return ecs.ResourceMut[ImguiBackend](g.scheduler.Resources())
}

func (g *Game) Update() error {
	backend := g.backend()
	if backend == nil {
		return ebiten.Termination
	}

	backend.BeginFrame()
	err := g.scheduler.Once(g.timer.Tick())
	backend.EndFrame()

	if err != nil {
		g.scheduler.Logger().Error("frame failed", zap.Error(err))
		return err
	}
	if g.scheduler.ExitRequested() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.DrawWorld != nil {
		g.DrawWorld(screen)
	}
	if backend := g.backend(); backend != nil {
		backend.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if backend := g.backend(); backend != nil {
		backend.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run runs the Ebiten loop until the window closes or a system requests exit,
// then shuts the scheduler down.
func Run(g *Game) error {
	runErr := ebiten.RunGame(g)
	if err := g.scheduler.Shutdown(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
