package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"regimealloc/internal/config"
	l3_service "regimealloc/internal/service/l3"
)

type ApiHandler struct {
	Cfg             *config.Config
	Logger          *zap.SugaredLogger
	OptimizeService l3_service.OptimizeService
}

func (m ApiHandler) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddlware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to regimealloc"})
	})
	router.POST("/optimize", m.optimize)
	router.POST("/classify", m.classify)
	router.POST("/scenarios", m.scenarios)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.Router().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	c.AbortWithStatusJSON(500, gin.H{
		"error": err.Error(),
	})
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddlware(ctx *gin.Context) {
	requestID := uuid.NewString()
	start := time.Now()
	ctx.Set("requestID", requestID)

	ctx.Next()

	m.Logger.Infow("handled request",
		"requestId", requestID,
		"method", ctx.Request.Method,
		"path", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"elapsedMs", time.Since(start).Milliseconds(),
	)
}
