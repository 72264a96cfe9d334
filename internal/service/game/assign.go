package game

import (
	"math/rand"

	"go.uber.org/zap"
)

// assignRoles 在开局时一次性洗牌发牌：
// 洗乱活跃参与者，第一个成为 Saboteur，第二个成为 Decoy，
// 其余全部是 Investigator，每人再随机分配一个起始区域。
// 重复调用会重新洗牌，所以只允许从大厅阶段进入。
func assignRoles(ctx *SessionContext) error {
	actives := ctx.Roster.Active()

	if len(actives) < 3 {
		return ErrInsufficientPlayers
	}

	rand.Shuffle(len(actives), func(i, j int) {
		actives[i], actives[j] = actives[j], actives[i]
	})

	for i, p := range actives {
		switch i {
		case 0:
			p.Role = ROLE_SABOTEUR
		case 1:
			p.Role = ROLE_DECOY
		default:
			p.Role = ROLE_INVESTIGATOR
		}

		p.Zone = Zones[rand.Intn(len(Zones))]
	}

	// 初始化新一局的会话状态
	ctx.Round = 1
	ctx.SabotageUnitsCompleted = 0
	ctx.Votes = make(map[int]int)
	ctx.OpenTasks = make(map[int]bool)
	ctx.Winner = ""

	zap.L().Info(
		"角色分配完成",
		zap.String("session_id", ctx.SessionID),
		zap.Int("participants", len(actives)),
		zap.Int("units_required", ctx.SabotageUnitsRequired),
	)

	return nil
}
