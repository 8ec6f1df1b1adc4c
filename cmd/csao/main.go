package main

import (
	"os"
	"path/filepath"
	"time"

	"csao_engine/internal/csao"
	"csao_engine/internal/feature"
	"csao_engine/internal/graph"
	"csao_engine/internal/impressions"
	"csao_engine/internal/logger"
	"csao_engine/internal/server"
	"csao_engine/internal/workflow"
	"csao_engine/pkg/textgen"
)

func main() {
	cfg, flags := InitServerConfig()
	logger.SetDebug(cfg.Server.Debug)

	// 1. 互补关系图 (进程内只读，启动时加载一次)
	g, err := graph.Load(cfg.Paths.Complementarity)
	if err != nil {
		logger.Fatal("Failed to load complementarity graph: %v", err)
	}

	// 2. 特征提供者：静态目录 + 单次读取硬超时
	staticProvider, err := feature.NewStaticProvider(cfg.Paths.Catalog)
	if err != nil {
		logger.Fatal("Failed to init feature provider: %v", err)
	}
	fp := feature.WithTimeout(staticProvider, time.Duration(cfg.Feature.TimeoutMs)*time.Millisecond)

	// 3. 曝光存储
	if dir := filepath.Dir(cfg.Paths.Impressions); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create impressions dir: %v", err)
		}
	}
	store, err := impressions.NewFileStore(cfg.Paths.Impressions)
	if err != nil {
		logger.Fatal("Failed to init impressions store: %v", err)
	}
	if err := store.Cleanup(cfg.Retention.ImpressionDays); err != nil {
		logger.Warn("Impressions cleanup failed: %v", err)
	}

	// 4. 节点注册表 + 流程引擎
	registry := RegisterNodes(g, fp, store)
	engine, err := workflow.NewEngine(cfg.Paths.Pipelines, registry)
	if err != nil {
		logger.Fatal("Failed to init engine: %v", err)
	}

	// 5. 编排器
	orchestrator := csao.New(engine, fp, cfg.Server.Debug)

	// -simulate 模式：跑一遍演示场景后退出
	if flags.simulate {
		RunSimulation(orchestrator)
		return
	}

	// 6. 可选的文案生成客户端
	var insight textgen.Client
	if cfg.Insight.Endpoint != "" {
		insight = textgen.NewOpenAICompatClient(cfg.Insight.Endpoint, cfg.Insight.APIKey, cfg.Insight.Model)
		logger.Info("Insight generation enabled via %s", cfg.Insight.Endpoint)
	}

	// 7. 启动 HTTP Server
	srv := server.NewServer(orchestrator, store, insight)
	logger.Info("Starting HTTP server on port %s...", cfg.Server.Port)
	if err := srv.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Server failed: %v", err)
	}
}
