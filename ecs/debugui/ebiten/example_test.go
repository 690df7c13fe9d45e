package ebiten_test

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/realm/ecs"
	"github.com/plus3/realm/ecs/debugui"
	debugui_ebiten "github.com/plus3/realm/ecs/debugui/ebiten"
)

func Example() {
	// Create Ebiten window and ImGui backend
	imguiBackend := ebitenbackend.NewEbitenBackend()
	imguiBackend.CreateWindow("ECS ImGui Example", 1280, 720)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini

	registry := ecs.NewComponentRegistry()
	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage)

	// Diagnostics overlay plus a custom window
	if _, err := debugui.Install(scheduler); err != nil {
		panic(err)
	}
	storage.Spawn(debugui.ImguiItem{
		Render: func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from ECS!")
			imgui.End()
		},
	})

	game := debugui_ebiten.NewGame(scheduler, imguiBackend)
	if err := debugui_ebiten.Run(game); err != nil {
		panic(err)
	}
}
