package http

import (
	"strconv"

	"find-the-saboteur-be/internal/service/dto"
	"find-the-saboteur-be/internal/state"

	"github.com/kataras/iris/v12"
)

func CreateSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.CreateSessionRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "请求参数无效",
			})
			return
		}

		resp, err := appState.SessionSvc.CreateSession(req)
		if err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(resp)
	}
}

func AddBots(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.AddBotsRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "请求参数无效",
			})
			return
		}

		resp, err := appState.SessionSvc.AddBots(req)
		if err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(resp)
	}
}

func StartSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.StartSessionRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "请求参数无效",
			})
			return
		}

		if err := appState.SessionSvc.StartSession(req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(iris.Map{"started": true})
	}
}

func ResetSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.ResetSessionRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "请求参数无效",
			})
			return
		}

		if err := appState.SessionSvc.ResetSession(req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(iris.Map{"reset": true})
	}
}

// SessionSnapshot 返回会话快照
// 带 participant_id 参数时附带该参与者本人的身份，其余人的身份永不下发
func SessionSnapshot(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		sessionID := ctx.URLParam("session_id")
		if sessionID == "" {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "缺少 session_id 参数",
			})
			return
		}

		participantID := 0
		if raw := ctx.URLParam("participant_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				ctx.StatusCode(iris.StatusBadRequest)
				ctx.JSON(iris.Map{
					"error": "participant_id 必须是整数",
				})
				return
			}
			participantID = id
		}

		snap, err := appState.SessionSvc.Snapshot(sessionID, participantID)
		if err != nil {
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(snap)
	}
}
