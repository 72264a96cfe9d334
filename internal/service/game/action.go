package game

// 各行动类型的 payload 结构

// JoinAction 只作为 WebSocket 首帧出现，由传输层转交给
// SessionService 处理，不进入行动分发器
type JoinAction struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

type MoveAction struct {
	Zone string `json:"zone"`
}

type CompleteTaskAction struct {
	Success bool `json:"success"`
}

type VoteAction struct {
	TargetID int `json:"target_id"`
}

// 服务端发出的响应结构

type JoinSessionResponse struct {
	SessionID    string        `json:"session_id"`
	Joiner       Participant   `json:"joiner"`
	Participants []Participant `json:"participants"`
}

type LeaveSessionResponse struct {
	LeftID   int    `json:"left_id"`
	LeftName string `json:"left_name"`
}

// RemovedResponse 单播给被移出会话的参与者本人
type RemovedResponse struct {
	Reason string `json:"reason"`
}

// RoleResponse 是开局时单播给每个参与者的私有信息
type RoleResponse struct {
	AssignedRole string `json:"assigned_role"`
	StartZone    string `json:"start_zone"`
}

// Event 是公开事件日志的一条记录，时间顺序由追加顺序隐含
type Event struct {
	Text string `json:"text"`
}

type GameResultResponse struct {
	Winner string `json:"winner"`
	// 游戏结束后公开所有人的真实身份，key 为参与者名字
	Roles map[string]string `json:"roles"`
}

// Snapshot 是视图层可见的会话状态
// YourRole 只在带 participant_id 的私有快照中填充
type Snapshot struct {
	Phase                  string        `json:"phase"`
	Round                  int           `json:"round"`
	SabotageUnitsCompleted int           `json:"sabotage_units_completed"`
	SabotageUnitsRequired  int           `json:"sabotage_units_required"`
	Winner                 string        `json:"winner,omitempty"`
	Participants           []Participant `json:"participants"`
	YourRole               string        `json:"your_role,omitempty"`
}
