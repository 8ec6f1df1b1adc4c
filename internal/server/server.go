package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"csao_engine/internal/csao"
	"csao_engine/internal/impressions"
	"csao_engine/internal/logger"
	"csao_engine/internal/task"
	"csao_engine/pkg/textgen"

	"github.com/gin-gonic/gin"
)

// Server 代表 HTTP API 服务器
type Server struct {
	router       *gin.Engine
	orchestrator *csao.Orchestrator
	impressions  impressions.Store
	tasks        *task.Manager
	insight      textgen.Client // 可选，未配置时为 nil
}

// NewServer 创建新的 HTTP 服务器
// insight 传 nil 表示不启用文案生成
func NewServer(o *csao.Orchestrator, store impressions.Store, insight textgen.Client) *Server {
	s := &Server{
		router:       gin.Default(),
		orchestrator: o,
		impressions:  store,
		tasks:        task.NewManager(),
		insight:      insight,
	}
	s.router.Use(s.corsMiddleware())
	s.setupRoutes()
	return s
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")

	// 加购推荐 - 使用路径参数传递 scene (流水线名)
	v1.POST("/recommend/:scene", s.handleRecommend)

	// 异步批量推荐
	v1.POST("/tasks/batch", s.handleBatchRecommend)
	v1.GET("/tasks/:id", s.handleGetTask)
}

// RecommendRequest 单次加购推荐请求
// cart_items 允许为空数组 (空购物车走兜底召回)；user_id 缺省为游客；
// top_n 用指针区分 "没传" (默认值) 和 "传了 0" (只要信封)
type RecommendRequest struct {
	CartItems []string `json:"cart_items"`
	UserID    string   `json:"user_id"`
	TopN      *int     `json:"top_n"`
}

type recommendResponse struct {
	*csao.Response
	Scene   string `json:"scene"`
	Insight string `json:"insight,omitempty"`
}

// handleRecommend 处理加购推荐请求
// POST /api/v1/recommend/:scene
func (s *Server) handleRecommend(c *gin.Context) {
	scene := c.Param("scene")
	if scene == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scene parameter is required"})
		return
	}
	if !s.orchestrator.HasScene(scene) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("scene '%s' not supported", scene)})
		return
	}

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	topN := csao.DefaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}

	resp, err := s.orchestrator.Recommend(c.Request.Context(), scene, req.CartItems, req.UserID, topN)
	if err != nil {
		// 输入校验错误直接回给调用方，其余算内部失败
		if strings.Contains(err.Error(), "top_n") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("recommendation failed: %v", err)})
		return
	}

	c.Header("X-Request-ID", resp.RequestID)

	// 异步保存曝光记录，不占请求延迟
	if len(resp.Recommendations) > 0 {
		userID := req.UserID
		if userID == "" {
			userID = "guest"
		}
		itemNames := make([]string, 0, len(resp.Recommendations))
		for _, rec := range resp.Recommendations {
			itemNames = append(itemNames, rec.Name)
		}
		go func() {
			if err := s.impressions.Save(userID, scene, itemNames); err != nil {
				logger.Error("failed to save impressions async: %v", err)
			}
		}()
	}

	out := recommendResponse{Response: resp, Scene: scene}

	// 文案生成是锦上添花：显式请求且配置了客户端才调用，失败只是没有文案
	if c.Query("insight") == "1" && s.insight != nil && len(resp.Recommendations) > 0 {
		out.Insight = s.generateInsight(c.Request.Context(), req.CartItems, resp)
	}

	c.JSON(http.StatusOK, out)
}

// generateInsight 调远端文本生成服务产出一句加购文案
func (s *Server) generateInsight(ctx context.Context, cart []string, resp *csao.Response) string {
	top := resp.Recommendations
	if len(top) > 3 {
		top = top[:3]
	}
	names := make([]string, 0, len(top))
	for _, rec := range top {
		names = append(names, rec.Name)
	}

	prompt := fmt.Sprintf("Cart: %s. Suggested add-ons: %s. Write the blurb.",
		strings.Join(cart, ", "), strings.Join(names, ", "))

	ictx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	text, err := s.insight.Generate(ictx, prompt)
	if err != nil {
		logger.Warn("insight generation degraded: %v", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// BatchRecommendRequest 异步批量推荐请求
type BatchRecommendRequest struct {
	Scene    string             `json:"scene"`
	Requests []RecommendRequest `json:"requests" binding:"required"`
}

// handleBatchRecommend 受理批量推荐任务，立刻返回任务 ID
// POST /api/v1/tasks/batch
func (s *Server) handleBatchRecommend(c *gin.Context) {
	var req BatchRecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	scene := req.Scene
	if scene == "" {
		scene = csao.DefaultScene
	}
	if !s.orchestrator.HasScene(scene) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("scene '%s' not supported", scene)})
		return
	}

	t := s.tasks.NewTask("batch_recommend")

	go func() {
		_ = s.tasks.UpdateStatus(t.ID, task.StatusProcessing)

		results := make([]*csao.Response, 0, len(req.Requests))
		for _, r := range req.Requests {
			topN := csao.DefaultTopN
			if r.TopN != nil {
				topN = *r.TopN
			}
			// 批量任务脱离了原始请求的生命周期，用后台 context
			resp, err := s.orchestrator.Recommend(context.Background(), scene, r.CartItems, r.UserID, topN)
			if err != nil {
				_ = s.tasks.SetError(t.ID, err)
				return
			}
			results = append(results, resp)
		}
		_ = s.tasks.SetResult(t.ID, results)
	}()

	c.JSON(http.StatusAccepted, gin.H{"task_id": t.ID})
}

// handleGetTask 查询异步任务状态
// GET /api/v1/tasks/:id
func (s *Server) handleGetTask(c *gin.Context) {
	t, err := s.tasks.GetTask(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}
