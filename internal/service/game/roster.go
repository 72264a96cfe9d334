package game

import (
	"fmt"
	"slices"
)

// Roster 维护参与者 ID 到参与者的映射
// 它本身不做并发保护，所有访问都经过 SessionMachine 的锁
type Roster struct {
	participants map[int]*Participant
	nextID       int
}

func NewRoster() *Roster {
	return &Roster{
		participants: make(map[int]*Participant),
		nextID:       1,
	}
}

// Join 添加一个人类参与者
// 活跃的人类参与者之间名字不允许重复，bot 名字不受限制
func (r *Roster) Join(name string, respCh chan ResponseWrapper) (*Participant, error) {
	for _, p := range r.participants {
		if p.Active && !p.IsBot && p.Name == name {
			return nil, ErrDuplicateName
		}
	}

	p := &Participant{
		ID:     r.nextID,
		Name:   name,
		Role:   ROLE_UNSET,
		Active: true,
		RespCh: respCh,
	}

	r.nextID++
	r.participants[p.ID] = p

	return p, nil
}

// Attach 给已在名单上但还没挂写通道的人类参与者补上通道。
// 创建者先通过 REST 入席、随后才建立 WebSocket 连接，走的就是这条路
func (r *Roster) Attach(name string, respCh chan ResponseWrapper) *Participant {
	if respCh == nil {
		return nil
	}

	for _, p := range r.participants {
		if p.Active && !p.IsBot && p.Name == name && p.RespCh == nil {
			p.RespCh = respCh
			return p
		}
	}

	return nil
}

// AddBots 批量添加 bot，按历史分配过的 ID 顺延编号
func (r *Roster) AddBots(count int) []*Participant {
	bots := make([]*Participant, 0, count)

	for i := 0; i < count; i++ {
		p := &Participant{
			ID:     r.nextID,
			Name:   fmt.Sprintf("Bot %d", r.nextID),
			IsBot:  true,
			Role:   ROLE_UNSET,
			Active: true,
		}

		r.nextID++
		r.participants[p.ID] = p
		bots = append(bots, p)
	}

	return bots
}

// Leave 把参与者标记为不活跃
// 大厅阶段直接删除，局中保留记录以免票数阈值和身份判定失去依据
func (r *Roster) Leave(id int, inLobby bool) *Participant {
	p, ok := r.participants[id]
	if !ok {
		return nil
	}

	if inLobby {
		delete(r.participants, id)
	} else {
		p.Active = false
	}

	return p
}

// Remove 从名单中彻底删除参与者，只在捕获普通调查员时使用
func (r *Roster) Remove(id int) {
	delete(r.participants, id)
}

func (r *Roster) Get(id int) *Participant {
	return r.participants[id]
}

// Active 返回所有活跃参与者，按 ID 升序，保证迭代顺序确定
func (r *Roster) Active() []*Participant {
	actives := make([]*Participant, 0, len(r.participants))

	for _, p := range r.participants {
		if p.Active {
			actives = append(actives, p)
		}
	}

	slices.SortFunc(actives, func(a, b *Participant) int {
		return a.ID - b.ID
	})

	return actives
}

func (r *Roster) CountActive() int {
	count := 0

	for _, p := range r.participants {
		if p.Active {
			count++
		}
	}

	return count
}

// ResetRoles 把所有参与者恢复到未分配状态，用于会话重置
func (r *Roster) ResetRoles() {
	for _, p := range r.participants {
		p.Role = ROLE_UNSET
		p.Zone = ZONE_UNSET
	}
}
