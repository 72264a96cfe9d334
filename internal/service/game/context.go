package game

import (
	"fmt"

	"go.uber.org/zap"
)

// 公开事件日志只保留最近的 100 条，更早的会被丢弃
const MAX_EVENTS = 100

// SessionContext 是会话的全部可变状态
// 只有 SessionMachine 持锁时才允许读写
type SessionContext struct {
	SessionID string
	Phase     string
	Round     int

	SabotageUnitsRequired  int
	SabotageUnitsCompleted int

	Roster *Roster

	// voterID -> targetID，每人一票，后投覆盖先投
	Votes map[int]int

	// 有进行中任务的参与者集合
	OpenTasks map[int]bool

	Winner string

	Events []Event
}

// PushEvent 追加一条公开事件并广播给所有在线参与者
func (sc *SessionContext) PushEvent(format string, args ...any) Event {
	ev := Event{Text: fmt.Sprintf(format, args...)}

	sc.Events = append(sc.Events, ev)
	if len(sc.Events) > MAX_EVENTS {
		sc.Events = sc.Events[len(sc.Events)-MAX_EVENTS:]
	}

	sc.BroadcastResp(WrapResponse(RESP_EVENT, ev))

	return ev
}

func (sc *SessionContext) BroadcastResp(resp ResponseWrapper) {
	for _, p := range sc.Roster.participants {
		// bot 和已离线的参与者没有响应通道
		if p.RespCh == nil {
			continue
		}

		select {
		case p.RespCh <- resp:
			zap.L().Debug(
				"成功发送广播响应",
				zap.Int("participant_id", p.ID),
				zap.Any("response", resp),
			)
		default:
			zap.L().Warn(
				"发送广播响应失败：参与者响应通道已满",
				zap.Int("participant_id", p.ID),
			)
		}
	}
}

func (sc *SessionContext) UnicastResp(participantID int, resp ResponseWrapper) {
	p := sc.Roster.Get(participantID)
	if p == nil || p.RespCh == nil {
		return
	}

	select {
	case p.RespCh <- resp:
		zap.L().Debug(
			"发送单播响应成功",
			zap.Int("participant_id", participantID),
			zap.Any("response", resp),
		)
	default:
		zap.L().Warn(
			"发送单播响应失败：参与者响应通道已满",
			zap.Int("participant_id", participantID),
		)
	}
}

// retireRespCh 放弃状态机对某个参与者响应通道的引用。
// 通道由创建它的 WebSocket 处理协程独占关闭权，状态机绝不 close，
// 只发一帧 Removed 告知写协程该退出，然后置 nil 停止后续投递。
func retireRespCh(p *Participant, reason string) {
	if p.RespCh == nil {
		return
	}

	select {
	case p.RespCh <- WrapResponse(RESP_REMOVED, RemovedResponse{Reason: reason}):
	default:
		zap.L().Warn(
			"参与者响应通道已满，丢弃移出通知",
			zap.Int("participant_id", p.ID),
		)
	}

	p.RespCh = nil
}

// buildSnapshot 构造视图层快照
// selfID > 0 时在 YourRole 中附带本人身份，其余参与者的身份永远不公开
func (sc *SessionContext) buildSnapshot(selfID int) Snapshot {
	snap := Snapshot{
		Phase:                  sc.Phase,
		Round:                  sc.Round,
		SabotageUnitsCompleted: sc.SabotageUnitsCompleted,
		SabotageUnitsRequired:  sc.SabotageUnitsRequired,
		Winner:                 sc.Winner,
		Participants:           buildPublicParticipantList(sc),
	}

	if self := sc.Roster.Get(selfID); self != nil {
		snap.YourRole = self.Role
	}

	return snap
}

func buildPublicParticipantList(sc *SessionContext) []Participant {
	actives := sc.Roster.Active()

	public := make([]Participant, 0, len(actives))
	for _, p := range actives {
		public = append(public, sanitizeParticipant(p))
	}

	return public
}
