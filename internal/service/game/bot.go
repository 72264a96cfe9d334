package game

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BotController 为每个 bot 维护一个独立的随机间隔定时循环。
// 每次触发时在 {移动, 开始任务, 调查} 中等概率抽取一个行动，
// 走和人类完全一样的 Apply 入口提交。bot 不会自主投票或完成任务。
// 各 bot 的定时器互不协调；会话结束或 bot 离场时必须能成组取消。
type BotController struct {
	machine *SessionMachine

	minInterval time.Duration
	maxInterval time.Duration

	mu      sync.Mutex
	stopChs map[int]chan struct{}
	wg      sync.WaitGroup
}

func NewBotController(machine *SessionMachine, minInterval, maxInterval time.Duration) *BotController {
	if minInterval <= 0 {
		minInterval = 2500 * time.Millisecond
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}

	return &BotController{
		machine:     machine,
		minInterval: minInterval,
		maxInterval: maxInterval,
		stopChs:     make(map[int]chan struct{}),
	}
}

func (bc *BotController) StartAll(botIDs []int) {
	for _, id := range botIDs {
		bc.StartBot(id)
	}
}

func (bc *BotController) StartBot(botID int) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if _, running := bc.stopChs[botID]; running {
		return
	}

	stopCh := make(chan struct{})
	bc.stopChs[botID] = stopCh

	bc.wg.Add(1)
	go bc.botLoop(botID, stopCh)

	zap.L().Debug("bot 行动循环已启动", zap.Int("bot_id", botID))
}

// StopBot 停止单个 bot 的定时循环
func (bc *BotController) StopBot(botID int) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if stopCh, ok := bc.stopChs[botID]; ok {
		close(stopCh)
		delete(bc.stopChs, botID)
	}
}

// StopAll 向所有 bot 发出停止信号
// 只发信号不等待，调用方可能正持有状态机的锁
func (bc *BotController) StopAll() {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	for id, stopCh := range bc.stopChs {
		close(stopCh)
		delete(bc.stopChs, id)
	}
}

// Wait 等待所有 bot 协程退出，不能在持有状态机锁时调用
func (bc *BotController) Wait() {
	bc.wg.Wait()
}

func (bc *BotController) botLoop(botID int, stopCh <-chan struct{}) {
	defer bc.wg.Done()

	for {
		timer := time.NewTimer(bc.randInterval())

		select {
		case <-stopCh:
			timer.Stop()

			zap.L().Debug("bot 行动循环退出", zap.Int("bot_id", botID))
			return

		case <-timer.C:
		}

		wrapper := bc.randomAction(botID)

		// bot 是没有背压的生产者：行动被拒绝就直接丢弃，等下一次触发
		if _, err := bc.machine.Apply(wrapper); err != nil {
			zap.L().Debug(
				"bot 行动被拒绝",
				zap.Int("bot_id", botID),
				zap.String("action_type", wrapper.ActionType),
				zap.Error(err),
			)
		}
	}
}

func (bc *BotController) randInterval() time.Duration {
	spread := bc.maxInterval - bc.minInterval
	if spread <= 0 {
		return bc.minInterval
	}

	return bc.minInterval + time.Duration(rand.Int63n(int64(spread)))
}

func (bc *BotController) randomAction(botID int) ActionWrapper {
	switch rand.Intn(3) {
	case 0:
		return ActionWrapper{
			ActorID:    botID,
			ActionType: ACTION_MOVE,
			Payload:    mustMarshal(MoveAction{Zone: Zones[rand.Intn(len(Zones))]}),
		}
	case 1:
		return ActionWrapper{
			ActorID:    botID,
			ActionType: ACTION_START_TASK,
		}
	default:
		return ActionWrapper{
			ActorID:    botID,
			ActionType: ACTION_INVESTIGATE,
		}
	}
}
