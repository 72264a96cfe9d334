package service

import "time"

// isSessionStale 判断一个会话是否应当被清理：
// 没有任何活跃参与者，或者已经结束/存活超过 TTL
func isSessionStale(rec *sessionRecord, ttl time.Duration) bool {
	if rec == nil || rec.machine == nil {
		return true
	}

	if rec.machine.CountActive() == 0 {
		return true
	}

	age := time.Since(rec.machine.CreatedAt())

	if rec.machine.IsFinished() && age > ttl {
		return true
	}

	// 防止被遗忘的会话无限期占用资源
	return age > 4*ttl
}
