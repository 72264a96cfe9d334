package websocket

import (
	"encoding/json"
	"time"

	"find-the-saboteur-be/internal/service/game"
	"find-the-saboteur-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// JoinSession 建立一条 WebSocket 连接：
// 首帧必须是 join 行动，之后读协程把行动帧转交给会话分发器，
// 写协程把事件/快照/结果从参与者的响应通道推给客户端。
func JoinSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		respCh := make(chan game.ResponseWrapper, RESP_BUFFER_SIZE)

		// 读取首帧，必须是 join 行动
		_, msg, err := conn.ReadMessage()
		if err != nil {
			zap.L().Error(
				"读取首帧失败",
				zap.String("client_ip", ctx.RemoteAddr()),
				zap.Error(err),
			)
			return
		}

		var wrapper game.ActionWrapper

		if err := json.Unmarshal(msg, &wrapper); err != nil {
			zap.L().Error(
				"解析首帧失败",
				zap.String("client_ip", ctx.RemoteAddr()),
				zap.Error(err),
			)

			return
		}

		joinAction := game.TryUnwrapJoinAction(wrapper)
		if joinAction == nil {
			zap.L().Error(
				"首帧不是join行动",
				zap.String("client_ip", ctx.RemoteAddr()),
				zap.Any("wrapper", wrapper),
			)

			return
		}

		participant, err := appState.SessionSvc.JoinSession(
			joinAction.SessionID,
			joinAction.Name,
			respCh,
		)
		if err != nil {
			zap.L().Warn(
				"加入会话失败",
				zap.String("client_ip", ctx.RemoteAddr()),
				zap.Error(err),
			)

			conn.WriteJSON(game.WrapErrResponse(err.Error()))

			return
		}

		sessionID := joinAction.SessionID
		clientIP := ctx.RemoteAddr()

		zap.L().Info(
			"参与者成功加入会话",
			zap.String("client_ip", clientIP),
			zap.String("session_id", sessionID),
			zap.Int("participant_id", participant.ID),
			zap.String("participant_name", participant.Name),
		)

		// 写协程的退出信号
		writeDoneCh := make(chan struct{})
		defer close(writeDoneCh)

		// 写入协程
		go func() {
			ticker := time.NewTicker(HEARTBEAT_INTERVAL)
			defer ticker.Stop()

			for {
				select {
				case <-writeDoneCh:
					zap.L().Info(
						"WebSocket写入协程退出",
						zap.String("client_ip", clientIP),
					)
					return

				case <-ticker.C:
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						zap.L().Error(
							"发送心跳失败",
							zap.String("client_ip", clientIP),
							zap.Error(err),
						)
						return
					}

					conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

				case resp := <-respCh:
					if err := conn.WriteJSON(resp); err != nil {
						zap.L().Error(
							"发送消息失败",
							zap.String("client_ip", clientIP),
							zap.Error(err),
						)
						return
					}

					// 状态机已把该参与者移出会话：关闭连接让读协程一并退出。
					// 通道只在这个处理协程里有关闭权，状态机不会 close 它
					if resp.RespType == game.RESP_REMOVED {
						zap.L().Info(
							"参与者已被移出会话，关闭连接",
							zap.String("client_ip", clientIP),
						)
						conn.Close()
						return
					}
				}
			}
		}()

		// 读取协程（主协程）
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					zap.L().Error(
						"读取消息失败",
						zap.String("client_ip", clientIP),
						zap.Error(err),
					)
				}

				break
			}

			var actionWrapper game.ActionWrapper

			if err := json.Unmarshal(msg, &actionWrapper); err != nil {
				zap.L().Error(
					"解析消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)

				trySendResp(respCh, game.WrapErrResponse("无效的行动格式"))

				continue
			}

			// 行动者身份以连接为准，不信任帧里自带的 actor_id
			actionWrapper.ActorID = participant.ID

			if _, err := appState.SessionSvc.ApplyAction(sessionID, actionWrapper); err != nil {
				trySendResp(respCh, game.WrapErrResponse(err.Error()))
			}
		}

		// 读循环退出，表示客户端断开连接，把参与者移出会话
		zap.L().Info(
			"客户端连接断开，参与者退出会话",
			zap.String("client_ip", clientIP),
			zap.String("session_id", sessionID),
			zap.Int("participant_id", participant.ID),
		)

		appState.SessionSvc.LeaveSession(sessionID, participant.ID)
	}
}

// trySendResp 非阻塞地向响应通道写入，通道已满时丢弃
func trySendResp(respCh chan game.ResponseWrapper, resp game.ResponseWrapper) {
	select {
	case respCh <- resp:
	default:
		zap.L().Warn("响应通道已满，丢弃错误响应")
	}
}
