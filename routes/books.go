package routes

import (
	"net/http"
	"strings"

	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/models"
	"tmas-assistant-backend/services"
	"tmas-assistant-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupBookRoutes wires catalog listing and book recommendations.
func SetupBookRoutes(router *gin.Engine, cfg *config.Config, recommender *services.BookRecommender) {
	router.GET("/api/books", func(c *gin.Context) {
		if author := c.Query("author"); author != "" {
			c.JSON(http.StatusOK, gin.H{"books": models.GetBooksByAuthor(author)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": models.Books})
	})

	router.POST("/api/recommend-books", func(c *gin.Context) {
		var req models.BookRecommendationRequest
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

		result := recommender.Recommend(c.Request.Context(), req.UserQuery, req.ConversationHistory)
		c.JSON(http.StatusOK, result)
	})
}
