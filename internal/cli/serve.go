package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amterp/ra"
	"github.com/daangn/permalink/internal/api"
)

func registerServe(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("serve")
	cmd.SetDescription("Start the HTTP and WebSocket service")

	ctx.ServePort, _ = ra.NewInt("port").
		SetOptional(true).
		SetDefault(0).
		SetShort("p").
		SetFlagOnly(true).
		SetUsage("Port to listen on (default: server.port from config)").
		Register(cmd)

	ctx.ServeWatch, _ = ra.NewString("watch").
		SetShort("w").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Batch file to resolve on change and broadcast to WebSocket clients").
		Register(cmd)

	ctx.ServeUsed, _ = parent.RegisterCmd(cmd)
}

func runServe(port int, watchFile string) {
	app, err := NewApp(false)
	if err != nil {
		Fatal(err)
	}
	defer app.Log.Sync()

	if port != 0 {
		app.Config.Server.Port = port
		if err := app.Config.Validate(); err != nil {
			Fatal(err)
		}
	}

	server, err := api.NewServer(app.Config, app.Log, watchFile)
	if err != nil {
		Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := fmt.Sprintf("http://localhost:%d", app.Config.Server.Port)
	PrintInfo("permalink service running at %s", RenderURL(url))
	if watchFile != "" {
		PrintInfo("Watching %s", RenderURL(watchFile))
	}
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		Fatal(err)
	}
}
