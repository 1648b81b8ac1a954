package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cluetrail/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	contentService *services.ContentService
	codeService    *services.CodeService
}

func NewAdminHandler(contentService *services.ContentService, codeService *services.CodeService) *AdminHandler {
	return &AdminHandler{
		contentService: contentService,
		codeService:    codeService,
	}
}

func (h *AdminHandler) CreateGame(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.contentService.CreateGame(userID.(uint), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, game)
}

func (h *AdminHandler) ListGames(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	games, err := h.contentService.ListGames(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list games"})
		return
	}

	c.JSON(http.StatusOK, games)
}

func (h *AdminHandler) GetGame(c *gin.Context) {
	userID, gameID, ok := h.gameScope(c)
	if !ok {
		return
	}

	game, err := h.contentService.GetGame(gameID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *AdminHandler) DeleteGame(c *gin.Context) {
	userID, gameID, ok := h.gameScope(c)
	if !ok {
		return
	}

	if err := h.contentService.DeleteGame(gameID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// PreviewTimeline returns the composed timeline plus any orphaned splash
// screens for the authoring UI.
func (h *AdminHandler) PreviewTimeline(c *gin.Context) {
	userID, gameID, ok := h.gameScope(c)
	if !ok {
		return
	}
	if _, err := h.contentService.GetGame(gameID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	tl, err := h.contentService.ComposeForGame(gameID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compose timeline"})
		return
	}

	c.JSON(http.StatusOK, tl)
}

func (h *AdminHandler) ListOrphans(c *gin.Context) {
	userID, gameID, ok := h.gameScope(c)
	if !ok {
		return
	}
	if _, err := h.contentService.GetGame(gameID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	orphans, err := h.contentService.ListOrphanedSplashScreens(gameID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orphaned splash screens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orphans": orphans})
}

type SwapOrderRequest struct {
	PuzzleAID uint `json:"puzzle_a_id" binding:"required"`
	PuzzleBID uint `json:"puzzle_b_id" binding:"required"`
}

func (h *AdminHandler) SwapPuzzleOrder(c *gin.Context) {
	userID, gameID, ok := h.gameScope(c)
	if !ok {
		return
	}
	if _, err := h.contentService.GetGame(gameID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var req SwapOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.contentService.SwapPuzzleOrder(gameID, req.PuzzleAID, req.PuzzleBID); err != nil {
		if errors.Is(err, services.ErrPuzzleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Puzzle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to swap puzzle order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Puzzle order swapped"})
}

type ReassignSplashRequest struct {
	AnchorKind     string `json:"anchor_kind" binding:"required"`
	AnchorPuzzleID *uint  `json:"anchor_puzzle_id"`
}

func (h *AdminHandler) ReassignSplash(c *gin.Context) {
	splashID, err := parseID(c.Param("splashId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid splash screen id"})
		return
	}

	var req ReassignSplashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.contentService.ReassignSplash(splashID, req.AnchorKind, req.AnchorPuzzleID); err != nil {
		switch {
		case errors.Is(err, services.ErrSplashNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Splash screen not found"})
		case errors.Is(err, services.ErrPuzzleNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Anchor puzzle not found"})
		case errors.Is(err, services.ErrBadAnchor):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid anchor"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reassign splash screen"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Splash screen reassigned"})
}

type GenerateCodesRequest struct {
	Count int `json:"count" binding:"required,min=1,max=500"`
}

func (h *AdminHandler) GenerateCodes(c *gin.Context) {
	userID, gameID, ok := h.gameScope(c)
	if !ok {
		return
	}
	if _, err := h.contentService.GetGame(gameID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var req GenerateCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	codes, err := h.codeService.GenerateCodes(gameID, req.Count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate codes"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"codes": codes})
}

func (h *AdminHandler) ListCodes(c *gin.Context) {
	userID, gameID, ok := h.gameScope(c)
	if !ok {
		return
	}
	if _, err := h.contentService.GetGame(gameID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	codes, err := h.codeService.ListByGame(gameID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func (h *AdminHandler) DeactivateCode(c *gin.Context) {
	codeID, err := parseID(c.Param("codeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code id"})
		return
	}

	if err := h.codeService.Deactivate(codeID); err != nil {
		if errors.Is(err, services.ErrCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code deactivated"})
}

func (h *AdminHandler) ListUsage(c *gin.Context) {
	userID, gameID, ok := h.gameScope(c)
	if !ok {
		return
	}
	if _, err := h.contentService.GetGame(gameID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	logs, err := h.codeService.UsageByGame(gameID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"usage": logs})
}

func (h *AdminHandler) gameScope(c *gin.Context) (uint, uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, 0, false
	}

	gameID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game id"})
		return 0, 0, false
	}

	return userID.(uint), gameID, true
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
