package http

import (
	"fmt"

	"find-the-saboteur-be/internal/api/http/websocket"
	"find-the-saboteur-be/internal/state"

	"github.com/kataras/iris/v12"
)

func RunServer(appState *state.AppState) {
	app := iris.Default()

	app.HandleDir(
		"/",
		iris.Dir("./find-the-saboteur-fe"),
		iris.DirOptions{
			IndexName: "index.html",
			SPA:       true,
			Compress:  true,
		},
	)

	api := app.Party("/api/v1")

	api.Post("/sessions/create", CreateSession(appState))
	api.Post("/sessions/bots", AddBots(appState))
	api.Post("/sessions/start", StartSession(appState))
	api.Post("/sessions/reset", ResetSession(appState))
	api.Get("/sessions/snapshot", SessionSnapshot(appState))

	api.Get("/ws/join", websocket.JoinSession(appState))

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	app.Listen(addr)
}
