package main

import (
	"embed"
	"os"

	"github.com/example/emojiscrub/gui"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend
var assets embed.FS

func main() {
	vaultPath := ""
	if len(os.Args) > 1 {
		vaultPath = os.Args[1]
	}
	app := gui.NewApp(vaultPath)

	err := wails.Run(&options.App{
		Title:  "emojiscrub",
		Width:  720,
		Height: 560,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.Startup,
		OnShutdown: app.Shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
