package main

import (
	"find-the-saboteur-be/internal/api/http"
	"find-the-saboteur-be/internal/config"
	"find-the-saboteur-be/internal/logger"
	"find-the-saboteur-be/internal/service"
	"find-the-saboteur-be/internal/state"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)

	// 组装应用状态
	appState := state.NewAppState(
		cfg,
		service.NewSessionService(cfg),
	)

	// 启动服务器
	http.RunServer(appState)
}
