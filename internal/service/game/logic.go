package game

import (
	"fmt"

	"go.uber.org/zap"
)

// 会话总体分为 3 个阶段，分别是：
// 1. 大厅阶段（Lobby）：参与者可以加入会话、添加 bot，等待开始
// 2. 进行阶段（Playing）：移动、任务、调查、投票，直到分出胜负
// 3. 结束阶段（Ended）：宣布胜利方，拒绝一切后续变更

type PhaseHandler interface {
	Phase() string

	OnEnter(ctx *SessionContext)
	OnHandle(ctx *SessionContext, actor *Participant, wrapper ActionWrapper) (Event, error)
	OnExit(ctx *SessionContext)

	SetOnSwitch(func(nextPhase string))
}

// 大厅阶段：名单变更走 SessionMachine 的专用入口，
// 五种游戏行动在这里一律拒绝
type lobbyPhaseHandler struct {
	onSwitch func(string)
}

func NewLobbyPhaseHandler() *lobbyPhaseHandler {
	return &lobbyPhaseHandler{}
}

func (lph *lobbyPhaseHandler) Phase() string {
	return PHASE_LOBBY
}

func (lph *lobbyPhaseHandler) OnEnter(ctx *SessionContext) {
}

func (lph *lobbyPhaseHandler) OnHandle(ctx *SessionContext, actor *Participant, wrapper ActionWrapper) (Event, error) {
	return Event{}, ErrSessionNotActive
}

func (lph *lobbyPhaseHandler) OnExit(ctx *SessionContext) {
}

func (lph *lobbyPhaseHandler) SetOnSwitch(onSwitch func(string)) {
	lph.onSwitch = onSwitch
}

// 进行阶段处理器，承载全部五种行动
type playingPhaseHandler struct {
	onSwitch func(string)
}

func NewPlayingPhaseHandler() *playingPhaseHandler {
	return &playingPhaseHandler{}
}

func (pph *playingPhaseHandler) Phase() string {
	return PHASE_PLAYING
}

func (pph *playingPhaseHandler) OnEnter(ctx *SessionContext) {
	// 开局：给每个参与者单播私有身份，身份不出现在任何公开数据里
	for _, p := range ctx.Roster.Active() {
		ctx.UnicastResp(p.ID, WrapResponse(
			RESP_ROLE,
			RoleResponse{
				AssignedRole: p.Role,
				StartZone:    p.Zone,
			},
		))
	}

	ctx.BroadcastResp(WrapResponse(RESP_SNAPSHOT, ctx.buildSnapshot(0)))

	ctx.PushEvent("Round %d begins", ctx.Round)
}

func (pph *playingPhaseHandler) OnHandle(ctx *SessionContext, actor *Participant, wrapper ActionWrapper) (Event, error) {
	if act := TryUnwrapMoveAction(wrapper); act != nil {
		return handleMove(ctx, actor, act)
	}

	if wrapper.ActionType == ACTION_START_TASK {
		return handleStartTask(ctx, actor)
	}

	if act := TryUnwrapCompleteTaskAction(wrapper); act != nil {
		return handleCompleteTask(ctx, actor, act, pph.onSwitch)
	}

	if wrapper.ActionType == ACTION_INVESTIGATE {
		return handleInvestigate(ctx, actor)
	}

	if act := TryUnwrapVoteAction(wrapper); act != nil {
		return handleVote(ctx, actor, act, pph.onSwitch)
	}

	return Event{}, fmt.Errorf("进行阶段无法处理该行动类型: %s", wrapper.ActionType)
}

func (pph *playingPhaseHandler) OnExit(ctx *SessionContext) {
}

func (pph *playingPhaseHandler) SetOnSwitch(onSwitch func(string)) {
	pph.onSwitch = onSwitch
}

func handleMove(ctx *SessionContext, actor *Participant, act *MoveAction) (Event, error) {
	if !IsValidZone(act.Zone) {
		return Event{}, ErrInvalidZone
	}

	actor.Zone = act.Zone

	return ctx.PushEvent("%s moved to %s", actor.Name, act.Zone), nil
}

func handleStartTask(ctx *SessionContext, actor *Participant) (Event, error) {
	// 任务小游戏本身由外部协作方负责，这里只登记"有任务在身"
	ctx.OpenTasks[actor.ID] = true

	return ctx.PushEvent("%s started a task", actor.Name), nil
}

func handleCompleteTask(ctx *SessionContext, actor *Participant, act *CompleteTaskAction, onSwitch func(string)) (Event, error) {
	if !ctx.OpenTasks[actor.ID] {
		return Event{}, ErrNoOpenTask
	}

	delete(ctx.OpenTasks, actor.ID)

	// 只有 Saboteur 在可破坏区域的成功任务才推进破坏进度，
	// 但事件文本不区分身份，避免公开日志泄漏 Saboteur 是谁
	if act.Success && IsSabotageZone(actor.Zone) {
		if actor.Role == ROLE_SABOTEUR {
			ctx.SabotageUnitsCompleted++
			evaluateSabotageWin(ctx, onSwitch)
		}

		return ctx.PushEvent(
			"%s repaired unit %d/%d",
			actor.Name,
			ctx.SabotageUnitsCompleted,
			ctx.SabotageUnitsRequired,
		), nil
	}

	return ctx.PushEvent("%s completed a neutral task", actor.Name), nil
}

// evaluateSabotageWin 在每次破坏进度变化后检查逃脱胜利
// 这里和投票判定是阶段进入 Ended 的仅有两条路径
func evaluateSabotageWin(ctx *SessionContext, onSwitch func(string)) {
	if ctx.SabotageUnitsCompleted > ctx.SabotageUnitsRequired {
		// 进度越界属于程序缺陷，必须立刻暴露而不是悄悄截断
		panic(fmt.Sprintf(
			"sabotage progress overflow: %d/%d",
			ctx.SabotageUnitsCompleted,
			ctx.SabotageUnitsRequired,
		))
	}

	if ctx.SabotageUnitsCompleted >= ctx.SabotageUnitsRequired {
		ctx.Winner = WINNER_SABOTEUR_ESCAPED
		onSwitch(PHASE_ENDED)
	}
}

func handleInvestigate(ctx *SessionContext, actor *Participant) (Event, error) {
	target := pickInvestigationTarget(ctx, actor.ID)
	if target == nil {
		return Event{}, fmt.Errorf("没有可调查的对象")
	}

	// 只产生线索，不修改任何状态
	if investigateHint(target.Role) {
		return ctx.PushEvent("%s found suspicious evidence on %s", actor.Name, target.Name), nil
	}

	return ctx.PushEvent("%s found nothing on %s", actor.Name, target.Name), nil
}

func handleVote(ctx *SessionContext, actor *Participant, act *VoteAction, onSwitch func(string)) (Event, error) {
	target := ctx.Roster.Get(act.TargetID)
	if target == nil || !target.Active {
		return Event{}, ErrInvalidVoteTarget
	}

	// 每人一票，后投覆盖先投，允许投自己
	ctx.Votes[actor.ID] = target.ID

	ev := ctx.PushEvent("%s voted to capture %s", actor.Name, target.Name)

	// 阈值判断必须基于已合并本票的状态
	if allActiveVoted(ctx) {
		resolveVotes(ctx, onSwitch)
	}

	return ev, nil
}

// allActiveVoted 判断所有仍然活跃的参与者是否都已投票。
// 只统计活跃投票者，避免中途退出者撑大票数；
// 除了投票时检查，参与者退出也可能让阈值即刻满足。
func allActiveVoted(ctx *SessionContext) bool {
	active := ctx.Roster.CountActive()
	if active == 0 {
		return false
	}

	voted := 0
	for voterID := range ctx.Votes {
		if voter := ctx.Roster.Get(voterID); voter != nil && voter.Active {
			voted++
		}
	}

	return voted >= active
}

// resolveVotes 在所有活跃参与者投票完毕后结算：
// 得票最多者被捕获，平票时取候选中 ID 最小的，保证结果确定。
// 捕获 Saboteur 或 Decoy 立刻终局，捕获普通调查员则进入下一轮。
func resolveVotes(ctx *SessionContext, onSwitch func(string)) {
	tally := make(map[int]int)
	for voterID, targetID := range ctx.Votes {
		if voter := ctx.Roster.Get(voterID); voter != nil && voter.Active {
			tally[targetID]++
		}
	}

	capturedID := 0
	maxVotes := 0

	// 按 ID 升序遍历，平票时自然落在最小 ID 上
	for _, p := range ctx.Roster.Active() {
		if count := tally[p.ID]; count > maxVotes {
			maxVotes = count
			capturedID = p.ID
		}
	}

	captured := ctx.Roster.Get(capturedID)
	if captured == nil {
		// 所有选票都投给了已离场的目标：本轮无人被捕获
		zap.L().Warn(
			"投票结算：没有有效的捕获目标",
			zap.String("session_id", ctx.SessionID),
		)

		ctx.PushEvent("The vote failed — no one was captured")

		ctx.Votes = make(map[int]int)
		ctx.Round++

		ctx.PushEvent("Round %d begins", ctx.Round)

		return
	}

	zap.L().Info(
		"投票结算",
		zap.String("session_id", ctx.SessionID),
		zap.Int("captured_id", capturedID),
		zap.String("captured_role", captured.Role),
		zap.Int("votes", maxVotes),
	)

	switch captured.Role {
	case ROLE_SABOTEUR:
		ctx.PushEvent("The group captured %s — the saboteur is caught!", captured.Name)
		ctx.Winner = WINNER_INVESTIGATORS
		ctx.Votes = make(map[int]int)
		onSwitch(PHASE_ENDED)

	case ROLE_DECOY:
		ctx.PushEvent("The group captured %s — but it was only the decoy", captured.Name)
		ctx.Winner = WINNER_SABOTEUR_DECOY
		ctx.Votes = make(map[int]int)
		onSwitch(PHASE_ENDED)

	default:
		// 抓错普通调查员：该参与者离场，清空票箱，进入下一轮
		ctx.PushEvent("The group captured %s — an innocent investigator", captured.Name)

		retireRespCh(captured, "captured")
		ctx.Roster.Remove(captured.ID)
		delete(ctx.OpenTasks, captured.ID)

		ctx.Votes = make(map[int]int)
		ctx.Round++

		ctx.PushEvent("Round %d begins", ctx.Round)
	}
}

// 结束阶段处理器
type endedPhaseHandler struct {
	onSwitch func(string)
}

func NewEndedPhaseHandler() *endedPhaseHandler {
	return &endedPhaseHandler{}
}

func (eph *endedPhaseHandler) Phase() string {
	return PHASE_ENDED
}

func (eph *endedPhaseHandler) OnEnter(ctx *SessionContext) {
	// 终局后公开所有人的真实身份
	roles := make(map[string]string)
	for _, p := range ctx.Roster.Active() {
		roles[p.Name] = p.Role
	}

	ctx.BroadcastResp(WrapResponse(
		RESP_GAME_RESULT,
		GameResultResponse{
			Winner: ctx.Winner,
			Roles:  roles,
		},
	))

	zap.L().Info(
		"会话结束",
		zap.String("session_id", ctx.SessionID),
		zap.String("winner", ctx.Winner),
	)
}

func (eph *endedPhaseHandler) OnHandle(ctx *SessionContext, actor *Participant, wrapper ActionWrapper) (Event, error) {
	// 一旦进入结束阶段，拒绝所有变更性的行动
	return Event{}, ErrSessionNotActive
}

func (eph *endedPhaseHandler) OnExit(ctx *SessionContext) {
}

func (eph *endedPhaseHandler) SetOnSwitch(onSwitch func(string)) {
	eph.onSwitch = onSwitch
}
