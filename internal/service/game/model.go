package game

// 参与者身份
const (
	ROLE_UNSET        = "Unset"
	ROLE_SABOTEUR     = "Saboteur"
	ROLE_DECOY        = "Decoy"
	ROLE_INVESTIGATOR = "Investigator"
)

// 地图区域，固定的封闭集合
const (
	ZONE_UNSET      = ""
	ZONE_CRASH_SITE = "Crash Site"
	ZONE_LAB        = "Lab"
	ZONE_SUBURBS    = "Suburbs"
	ZONE_WAREHOUSE  = "Warehouse"
	ZONE_AGENCY_HQ  = "Agency HQ"
)

// Zones 是所有合法区域的列表，顺序固定
var Zones = []string{
	ZONE_CRASH_SITE,
	ZONE_LAB,
	ZONE_SUBURBS,
	ZONE_WAREHOUSE,
	ZONE_AGENCY_HQ,
}

// 只有这些区域里的任务才会推进破坏进度
// Suburbs 和 Agency HQ 中没有飞船零件
var sabotageZones = map[string]bool{
	ZONE_CRASH_SITE: true,
	ZONE_LAB:        true,
	ZONE_WAREHOUSE:  true,
}

func IsValidZone(zone string) bool {
	for _, z := range Zones {
		if z == zone {
			return true
		}
	}

	return false
}

func IsSabotageZone(zone string) bool {
	return sabotageZones[zone]
}

// 游戏阶段
const (
	PHASE_LOBBY   = "Lobby"
	PHASE_PLAYING = "Playing"
	PHASE_ENDED   = "Ended"
)

// 获胜方标识，会直接展示给客户端
const (
	WINNER_INVESTIGATORS    = "Investigators"
	WINNER_SABOTEUR_DECOY   = "Saboteur (via Decoy)"
	WINNER_SABOTEUR_ESCAPED = "Saboteur (escaped)"
)

type Participant struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"is_bot"`
	// Role 只会出现在发给本人的私有快照里
	Role string `json:"role,omitempty"`
	Zone string `json:"zone,omitempty"`
	// 在局中退出的参与者不会被删除，只会被标记为不活跃
	Active bool `json:"-"`

	RespCh chan ResponseWrapper `json:"-"`
}

// sanitizeParticipant 返回删除了敏感字段的副本，用于公开广播
func sanitizeParticipant(p *Participant) Participant {
	pub := *p
	pub.Role = ""
	pub.RespCh = nil

	return pub
}
