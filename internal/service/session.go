package service

import (
	"errors"
	"sync"
	"time"

	"find-the-saboteur-be/internal/config"
	"find-the-saboteur-be/internal/service/dto"
	"find-the-saboteur-be/internal/service/game"

	"go.uber.org/zap"
)

type SessionService struct {
	state *sessionServiceState
	opts  game.Options
	ttl   time.Duration
}

type sessionRecord struct {
	name    string
	machine *game.SessionMachine
}

type sessionServiceState struct {
	mu sync.RWMutex

	// 从会话 ID 到会话记录的映射
	sessions map[string]*sessionRecord

	cleanUpDone chan struct{}
}

func NewSessionService(cfg *config.AppConfig) *SessionService {
	state := &sessionServiceState{
		sessions:    make(map[string]*sessionRecord),
		cleanUpDone: make(chan struct{}),
	}

	svc := &SessionService{
		state: state,
		opts: game.Options{
			SabotageUnitsRequired: cfg.SabotageUnitsRequired,
			BotMinInterval:        time.Duration(cfg.BotMinIntervalMs) * time.Millisecond,
			BotMaxInterval:        time.Duration(cfg.BotMaxIntervalMs) * time.Millisecond,
		},
		ttl: time.Duration(cfg.SessionTTLMinutes) * time.Minute,
	}

	// 启动一个 goroutine 定期清理过期的会话
	go svc.startCleanupLoop()

	return svc
}

func (ss *SessionService) startCleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ss.state.cleanUpDone:
			return

		case <-ticker.C:
			ss.state.mu.Lock()

			for sessionID, rec := range ss.state.sessions {
				if !isSessionStale(rec, ss.ttl) {
					continue
				}

				zap.S().Infof("会话 %s 状态失效，开始清理", sessionID)

				delete(ss.state.sessions, sessionID)

				// Close 会等待该会话所有 bot 协程退出
				go rec.machine.Close()
			}

			ss.state.mu.Unlock()
		}
	}
}

func (ss *SessionService) Close() {
	close(ss.state.cleanUpDone)

	ss.state.mu.Lock()
	defer ss.state.mu.Unlock()

	for sessionID, rec := range ss.state.sessions {
		delete(ss.state.sessions, sessionID)
		go rec.machine.Close()
	}
}

func (ss *SessionService) CreateSession(req dto.CreateSessionRequest) (dto.CreateSessionResponse, error) {
	if req.SessionName == "" {
		return dto.CreateSessionResponse{}, errors.New("会话名称不能为空")
	}
	if req.CreatorName == "" {
		return dto.CreateSessionResponse{}, errors.New("创建者名称不能为空")
	}

	sessionID := game.GenID()[len(game.GenID())-8:] // Generate a short session ID

	machine := game.NewSessionMachine(sessionID, ss.opts)

	// 创建者立刻入席，写通道等其建立 WebSocket 连接时再补挂
	creator, err := machine.Join(req.CreatorName, nil)
	if err != nil {
		return dto.CreateSessionResponse{}, err
	}

	ss.state.mu.Lock()
	ss.state.sessions[sessionID] = &sessionRecord{
		name:    req.SessionName,
		machine: machine,
	}
	ss.state.mu.Unlock()

	zap.S().Infof("会话 %s(%s) 由 %s 创建", sessionID, req.SessionName, creator.Name)

	return dto.CreateSessionResponse{
		SessionID:   sessionID,
		SessionName: req.SessionName,
		Creator:     *creator,
	}, nil
}

// JoinSession 把一个人类参与者加入会话，respCh 是其 WebSocket 写通道
func (ss *SessionService) JoinSession(
	sessionID string,
	name string,
	respCh chan game.ResponseWrapper,
) (*game.Participant, error) {
	if name == "" {
		return nil, errors.New("参与者名称不能为空")
	}

	machine, err := ss.getMachine(sessionID)
	if err != nil {
		return nil, err
	}

	return machine.Join(name, respCh)
}

func (ss *SessionService) LeaveSession(sessionID string, participantID int) {
	machine, err := ss.getMachine(sessionID)
	if err != nil {
		zap.S().Warnf("会话 %s 不存在，无法退出", sessionID)
		return
	}

	machine.Leave(participantID)
}

func (ss *SessionService) AddBots(req dto.AddBotsRequest) (dto.AddBotsResponse, error) {
	if req.Count <= 0 {
		return dto.AddBotsResponse{}, errors.New("bot 数量必须大于 0")
	}

	machine, err := ss.getMachine(req.SessionID)
	if err != nil {
		return dto.AddBotsResponse{}, err
	}

	bots, err := machine.AddBots(req.Count)
	if err != nil {
		return dto.AddBotsResponse{}, err
	}

	botNames := make([]string, 0, len(bots))
	for _, b := range bots {
		botNames = append(botNames, b.Name)
	}

	zap.S().Infof("会话 %s 添加了 %d 个 bot", req.SessionID, len(bots))

	return dto.AddBotsResponse{BotNames: botNames}, nil
}

func (ss *SessionService) StartSession(req dto.StartSessionRequest) error {
	machine, err := ss.getMachine(req.SessionID)
	if err != nil {
		return err
	}

	// 只有在席的参与者才有资格开始游戏
	if !machine.HasActiveParticipant(req.StarterID) {
		return game.ErrUnknownActor
	}

	if err := machine.Start(); err != nil {
		return err
	}

	zap.S().Infof("会话 %s 开始游戏", req.SessionID)

	return nil
}

func (ss *SessionService) ResetSession(req dto.ResetSessionRequest) error {
	machine, err := ss.getMachine(req.SessionID)
	if err != nil {
		return err
	}

	machine.Reset()

	return nil
}

// ApplyAction 把一个行动转交给对应会话的分发器
func (ss *SessionService) ApplyAction(sessionID string, wrapper game.ActionWrapper) (game.Event, error) {
	machine, err := ss.getMachine(sessionID)
	if err != nil {
		return game.Event{}, err
	}

	return machine.Apply(wrapper)
}

// Snapshot 返回会话快照，participantID > 0 时附带该参与者的私有身份
func (ss *SessionService) Snapshot(sessionID string, participantID int) (game.Snapshot, error) {
	machine, err := ss.getMachine(sessionID)
	if err != nil {
		return game.Snapshot{}, err
	}

	return machine.Snapshot(participantID), nil
}

func (ss *SessionService) getMachine(sessionID string) (*game.SessionMachine, error) {
	ss.state.mu.RLock()
	defer ss.state.mu.RUnlock()

	rec, ok := ss.state.sessions[sessionID]
	if !ok {
		return nil, errors.New("会话不存在")
	}

	return rec.machine, nil
}
