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

// SetupProblemRoutes wires practice problem recommendations. The extractor
// path (real problems out of the PDF) is preferred; the advisor path asks
// the assistant to guess; the canned fallback always answers.
func SetupProblemRoutes(router *gin.Engine, cfg *config.Config, extractor *services.ProblemExtractor, advisor *services.ProblemAdvisor) {
	router.POST("/api/recommend-problems", func(c *gin.Context) {
		var req models.ProblemRecommendationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.IDToken == "" {
			utils.RespondWithUnauthorized(c, "Not authenticated")
			return
		}
		if strings.TrimSpace(req.UserQuery) == "" {
			utils.RespondWithBadRequest(c, "User query is required", nil)
			return
		}
		if strings.TrimSpace(req.BookID) == "" {
			utils.RespondWithBadRequest(c, "Book ID is required", nil)
			return
		}

		book, ok := models.GetBookByID(req.BookID)
		if !ok {
			utils.RespondWithNotFound(c, "Book not found")
			return
		}

		if book.PDFPath != "" {
			problems, err := extractor.FindRelevantProblems(c.Request.Context(), req.UserQuery, book)
			if err != nil {
				logger.Warn("Embedding problem search failed", "book", book.ID, "error", err)
			} else if len(problems) > 0 {
				c.JSON(http.StatusOK, gin.H{"problems": problems})
				return
			}
		}

		problems, err := advisor.Recommend(c.Request.Context(), req.IDToken, req.ChatID, req.UserQuery, book)
		if err != nil {
			logger.Error("Problem advisor failed", "book", book.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    "Failed to generate problem recommendations",
				"problems": []models.PracticeProblem{},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"problems": problems})
	})
}
