package routes

import (
	"fmt"
	"net/http"
	"time"

	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/middleware"
	"tmas-assistant-backend/services"
	"tmas-assistant-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes wires the staff-only surface: transcript export and
// cache management. export may be nil when persistence is disabled.
func SetupAdminRoutes(router *gin.Engine, cfg *config.Config, export *services.ExportService, extractor *services.ProblemExtractor, embeddings *services.EmbeddingCache) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.RequireAdmin(cfg))

	if export != nil {
		admin.GET("/export/messages", func(c *gin.Context) {
			buf, count, err := export.ExportMessagesXLSX(c.Request.Context(), 10000)
			if err != nil {
				utils.RespondWithInternalError(c, "Export failed", nil)
				return
			}

			filename := fmt.Sprintf("messages_%s.xlsx", time.Now().Format("20060102_150405"))
			c.Header("Content-Disposition", "attachment; filename="+filename)
			c.Header("X-Record-Count", fmt.Sprintf("%d", count))
			c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
		})
	}

	admin.POST("/cache/clear", func(c *gin.Context) {
		embeddings.Clear()
		extractor.ClearCache()
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	})

	admin.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"embedding_entries": embeddings.Size(),
		})
	})
}
