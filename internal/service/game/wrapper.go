package game

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 行动类型，与客户端/bot 提交的 wire 格式一致
const (
	ACTION_JOIN          = "join"
	ACTION_MOVE          = "move"
	ACTION_START_TASK    = "startTask"
	ACTION_COMPLETE_TASK = "completeTask"
	ACTION_INVESTIGATE   = "investigate"
	ACTION_VOTE          = "vote"
)

type ActionWrapper struct {
	ActorID    int             `json:"actor_id"`
	ActionType string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func TryUnwrapJoinAction(wrapper ActionWrapper) *JoinAction {
	if wrapper.ActionType != ACTION_JOIN {
		return nil
	}

	var joinAction JoinAction

	err := json.Unmarshal(wrapper.Payload, &joinAction)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap JoinAction",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &joinAction
}

func TryUnwrapMoveAction(wrapper ActionWrapper) *MoveAction {
	if wrapper.ActionType != ACTION_MOVE {
		return nil
	}

	var moveAction MoveAction

	err := json.Unmarshal(wrapper.Payload, &moveAction)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap MoveAction",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &moveAction
}

func TryUnwrapCompleteTaskAction(wrapper ActionWrapper) *CompleteTaskAction {
	if wrapper.ActionType != ACTION_COMPLETE_TASK {
		return nil
	}

	var completeTaskAction CompleteTaskAction

	err := json.Unmarshal(wrapper.Payload, &completeTaskAction)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap CompleteTaskAction",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &completeTaskAction
}

func TryUnwrapVoteAction(wrapper ActionWrapper) *VoteAction {
	if wrapper.ActionType != ACTION_VOTE {
		return nil
	}

	var voteAction VoteAction

	err := json.Unmarshal(wrapper.Payload, &voteAction)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap VoteAction",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &voteAction
}

// 响应类型
const (
	RESP_ERROR = "Error"

	RESP_JOIN_SESSION  = "JoinSession"
	RESP_LEAVE_SESSION = "LeaveSession"
	RESP_ROLE          = "Role"
	RESP_EVENT         = "Event"
	RESP_SNAPSHOT      = "Snapshot"
	RESP_GAME_RESULT   = "GameResult"

	// 发给被移出会话的参与者本人的终帧，写协程收到后退出
	RESP_REMOVED = "Removed"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data,omitempty"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}
