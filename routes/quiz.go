package routes

import (
	"net/http"
	"strings"

	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/models"
	"tmas-assistant-backend/services"
	"tmas-assistant-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupQuizRoutes wires quiz generation from assistant answers.
func SetupQuizRoutes(router *gin.Engine, cfg *config.Config, quiz *services.QuizService) {
	router.POST("/api/generate-quiz", func(c *gin.Context) {
		var req models.QuizRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.IDToken == "" {
			utils.RespondWithUnauthorized(c, "Not authenticated")
			return
		}
		if strings.TrimSpace(req.AIResponse) == "" {
			utils.RespondWithBadRequest(c, "AI response content is required", nil)
			return
		}

		questions, err := quiz.GenerateQuiz(c.Request.Context(), req.IDToken, req.ChatID, req.AIResponse)
		if err != nil {
			logger.Error("Quiz generation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Failed to generate quiz",
				"questions": services.FallbackQuiz(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"questions": questions})
	})
}
