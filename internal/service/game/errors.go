package game

import "errors"

// 本地校验错误，全部返回给调用方，不会终止会话
// 人类玩家会在界面上看到提示，bot 会直接丢弃并等待下一次行动
var (
	ErrUnknownActor        = errors.New("未知的参与者：不在名单中")
	ErrSessionNotActive    = errors.New("会话不在进行阶段")
	ErrSessionStarted      = errors.New("会话已经开始，无法加入")
	ErrInsufficientPlayers = errors.New("参与者不足：至少需要 3 人才能开始")
	ErrDuplicateName       = errors.New("该名字已被占用")
	ErrInvalidZone         = errors.New("无效的区域")
	ErrInvalidVoteTarget   = errors.New("无效的投票目标")
	ErrNoOpenTask          = errors.New("没有进行中的任务")
)
