package game

import "math/rand"

// 调查是带噪声的概率模型，不是确定性的身份揭示：
// 对 Saboteur 有 70% 概率给出"可疑"，对其他人也有 20% 的误报
const (
	SUSPICIOUS_PROB_SABOTEUR = 0.7
	SUSPICIOUS_PROB_OTHER    = 0.2
)

// investigateHint 根据目标真实身份返回是否"可疑"
func investigateHint(trueRole string) bool {
	p := SUSPICIOUS_PROB_OTHER
	if trueRole == ROLE_SABOTEUR {
		p = SUSPICIOUS_PROB_SABOTEUR
	}

	return rand.Float64() < p
}

// pickInvestigationTarget 在除自己以外的活跃参与者中均匀抽取一个目标
// 没有其他参与者时返回 nil
func pickInvestigationTarget(ctx *SessionContext, actorID int) *Participant {
	candidates := make([]*Participant, 0, ctx.Roster.CountActive())

	for _, p := range ctx.Roster.Active() {
		if p.ID != actorID {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	return candidates[rand.Intn(len(candidates))]
}
