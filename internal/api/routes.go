package api

import (
	"studyquiz/internal/api/handlers"
	"studyquiz/internal/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries what NewRouter needs besides the handlers.
type RouterConfig struct {
	FrontendURL string
	Log         *logger.Logger
}

// NewRouter builds a gin engine with recovery, access logging, CORS and every
// route registered.
func NewRouter(cfg RouterConfig, handler *handlers.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Log))
	router.Use(CORSMiddleware(cfg.FrontendURL))
	SetupRoutes(router, handler)
	return router
}

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	router.GET("/health", handler.HandleHealth)

	// Ingestion
	router.POST("/upload-pdf", handler.HandleUploadPDF)
	router.POST("/process-youtube", handler.HandleProcessYouTube)

	// Tests
	router.POST("/generate-mcq", handler.HandleGenerateMCQ)
	router.POST("/submit-test", handler.HandleSubmitTest)
	router.GET("/get-analysis/:test_id", handler.HandleGetAnalysis)
	router.GET("/get-trends", handler.HandleGetTrends)

	// Tutoring
	router.POST("/get-tutoring", handler.HandleGetTutoring)
}
