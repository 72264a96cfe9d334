package game

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options 是一局会话的规则参数，由配置层填充
type Options struct {
	SabotageUnitsRequired int
	BotMinInterval        time.Duration
	BotMaxInterval        time.Duration
}

// SessionMachine 是会话状态机，也是唯一允许修改会话状态的入口。
// 界面和 bot 的提交都经过 Apply，内部用一把互斥锁串行化，
// 保证"读当前状态、校验、写入下一个状态"对其他提交是原子的。
// 特别地，"是否所有人都已投票"永远基于合并了本次投票之后的状态判断。
type SessionMachine struct {
	mu      sync.Mutex
	ctx     *SessionContext
	handler PhaseHandler
	bots    *BotController

	createdAt time.Time
}

func NewSessionMachine(sessionID string, opts Options) *SessionMachine {
	ctx := &SessionContext{
		SessionID:             sessionID,
		Phase:                 PHASE_LOBBY,
		Roster:                NewRoster(),
		Votes:                 make(map[int]int),
		OpenTasks:             make(map[int]bool),
		SabotageUnitsRequired: opts.SabotageUnitsRequired,
	}

	sm := &SessionMachine{
		ctx:       ctx,
		handler:   NewLobbyPhaseHandler(),
		createdAt: time.Now(),
	}

	sm.bots = NewBotController(sm, opts.BotMinInterval, opts.BotMaxInterval)

	// 设置 onSwitch 回调
	onSwitch := func(nextPhase string) {
		sm.ctx.Phase = nextPhase
	}

	sm.handler.SetOnSwitch(onSwitch)

	return sm
}

// Apply 校验并应用一个行动，返回产生的公开事件
// 校验失败时状态不发生任何变化
func (sm *SessionMachine) Apply(wrapper ActionWrapper) (Event, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	actor := sm.ctx.Roster.Get(wrapper.ActorID)
	if actor == nil || !actor.Active {
		return Event{}, ErrUnknownActor
	}

	ev, err := sm.handler.OnHandle(sm.ctx, actor, wrapper)
	if err != nil {
		zap.L().Debug(
			"处理行动失败",
			zap.Error(err),
			zap.String("phase", sm.handler.Phase()),
			zap.Any("action", wrapper),
		)
		return Event{}, err
	}

	sm.switchPhaseIfNeeded()

	return ev, nil
}

// Join 添加一个人类参与者，只允许在大厅阶段
func (sm *SessionMachine) Join(name string, respCh chan ResponseWrapper) (*Participant, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.ctx.Phase != PHASE_LOBBY {
		return nil, ErrSessionStarted
	}

	// 已入席但尚未连接的参与者（会话创建者）只补挂通道，不重复入席
	if p := sm.ctx.Roster.Attach(name, respCh); p != nil {
		sm.ctx.UnicastResp(p.ID, WrapResponse(
			RESP_JOIN_SESSION,
			JoinSessionResponse{
				SessionID:    sm.ctx.SessionID,
				Joiner:       sanitizeParticipant(p),
				Participants: buildPublicParticipantList(sm.ctx),
			},
		))

		return p, nil
	}

	p, err := sm.ctx.Roster.Join(name, respCh)
	if err != nil {
		return nil, err
	}

	sm.ctx.BroadcastResp(WrapResponse(
		RESP_JOIN_SESSION,
		JoinSessionResponse{
			SessionID:    sm.ctx.SessionID,
			Joiner:       sanitizeParticipant(p),
			Participants: buildPublicParticipantList(sm.ctx),
		},
	))

	sm.ctx.PushEvent("%s joined the session", p.Name)

	return p, nil
}

// AddBots 批量添加 bot，只允许在大厅阶段
func (sm *SessionMachine) AddBots(count int) ([]*Participant, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.ctx.Phase != PHASE_LOBBY {
		return nil, ErrSessionStarted
	}

	bots := sm.ctx.Roster.AddBots(count)
	for _, b := range bots {
		sm.ctx.PushEvent("%s joined the session", b.Name)
	}

	return bots, nil
}

// Leave 把参与者移出会话
// 大厅阶段直接删除；局中只标记为不活跃，身份约束保持可判定
func (sm *SessionMachine) Leave(id int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	p := sm.ctx.Roster.Leave(id, sm.ctx.Phase == PHASE_LOBBY)
	if p == nil {
		zap.L().Warn("参与者不存在，无法退出", zap.Int("participant_id", id))
		return
	}

	// 通道归 WebSocket 处理协程所有，这里只发终帧并放弃引用
	retireRespCh(p, "left")

	if p.IsBot {
		sm.bots.StopBot(p.ID)
	}

	sm.ctx.BroadcastResp(WrapResponse(
		RESP_LEAVE_SESSION,
		LeaveSessionResponse{
			LeftID:   p.ID,
			LeftName: p.Name,
		},
	))

	sm.ctx.PushEvent("%s left the session", p.Name)

	// 退出者可能恰好是最后一个没投票的人，此时票箱立刻可以结算
	if sm.ctx.Phase == PHASE_PLAYING && allActiveVoted(sm.ctx) {
		resolveVotes(sm.ctx, func(nextPhase string) {
			sm.ctx.Phase = nextPhase
		})
		sm.switchPhaseIfNeeded()
	}
}

// Start 执行洗牌发牌并进入 Playing 阶段，同时启动所有 bot 的行动循环
// 只能从大厅阶段调用，重复调用会返回 ErrSessionStarted
func (sm *SessionMachine) Start() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.ctx.Phase != PHASE_LOBBY {
		return ErrSessionStarted
	}

	if err := assignRoles(sm.ctx); err != nil {
		return err
	}

	sm.ctx.Phase = PHASE_PLAYING
	sm.switchPhaseIfNeeded()

	botIDs := make([]int, 0)
	for _, p := range sm.ctx.Roster.Active() {
		if p.IsBot {
			botIDs = append(botIDs, p.ID)
		}
	}

	sm.bots.StartAll(botIDs)

	return nil
}

// Reset 显式重置会话：回到大厅阶段，清空角色、票箱和事件日志
func (sm *SessionMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.bots.StopAll()

	sm.ctx.Roster.ResetRoles()
	sm.ctx.Round = 0
	sm.ctx.SabotageUnitsCompleted = 0
	sm.ctx.Votes = make(map[int]int)
	sm.ctx.OpenTasks = make(map[int]bool)
	sm.ctx.Winner = ""
	sm.ctx.Events = nil

	sm.ctx.Phase = PHASE_LOBBY
	sm.switchPhaseIfNeeded()

	zap.L().Info("会话已重置", zap.String("session_id", sm.ctx.SessionID))
}

// Snapshot 构造视图层快照，selfID > 0 时附带本人身份
func (sm *SessionMachine) Snapshot(selfID int) Snapshot {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.ctx.buildSnapshot(selfID)
}

// Events 返回公开事件日志的副本
func (sm *SessionMachine) Events() []Event {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	evs := make([]Event, len(sm.ctx.Events))
	copy(evs, sm.ctx.Events)

	return evs
}

func (sm *SessionMachine) switchPhaseIfNeeded() {
	for sm.ctx.Phase != sm.handler.Phase() {
		// 执行当前 handler 的 OnExit
		sm.handler.OnExit(sm.ctx)

		// 根据新阶段创建对应的 handler
		var newHandler PhaseHandler

		switch sm.ctx.Phase {
		case PHASE_LOBBY:
			newHandler = NewLobbyPhaseHandler()
		case PHASE_PLAYING:
			newHandler = NewPlayingPhaseHandler()
		case PHASE_ENDED:
			newHandler = NewEndedPhaseHandler()
		default:
			zap.L().Error(
				"未知的游戏阶段",
				zap.String("phase", sm.ctx.Phase),
			)
			return
		}

		newHandler.SetOnSwitch(func(nextPhase string) {
			sm.ctx.Phase = nextPhase
		})

		sm.handler = newHandler
		sm.handler.OnEnter(sm.ctx)

		// 会话结束后 bot 的定时器必须确定性停止，不允许泄漏
		if sm.ctx.Phase == PHASE_ENDED {
			sm.bots.StopAll()
		}
	}
}

func (sm *SessionMachine) IsFinished() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.ctx.Phase == PHASE_ENDED
}

// HasActiveParticipant 判断 ID 是否对应一个活跃参与者，
// 供 REST 层校验开始请求的发起者确实在席
func (sm *SessionMachine) HasActiveParticipant(id int) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	p := sm.ctx.Roster.Get(id)

	return p != nil && p.Active
}

func (sm *SessionMachine) CountActive() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.ctx.Roster.CountActive()
}

func (sm *SessionMachine) CreatedAt() time.Time {
	return sm.createdAt
}

// Close 停止所有 bot 并等待它们退出，由会话清理逻辑调用
// 不能在持有状态机锁时调用，否则会和阻塞在 Apply 上的 bot 死锁
func (sm *SessionMachine) Close() {
	sm.mu.Lock()
	sm.bots.StopAll()
	sm.mu.Unlock()

	sm.bots.Wait()
}
