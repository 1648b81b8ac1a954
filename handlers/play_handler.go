package handlers

import (
	"errors"
	"net/http"
	"time"

	"cluetrail/services"

	"github.com/gin-gonic/gin"
)

type PlayHandler struct {
	codeService   *services.CodeService
	answerService *services.AnswerService
	hub           *services.Hub
}

func NewPlayHandler(codeService *services.CodeService, answerService *services.AnswerService, hub *services.Hub) *PlayHandler {
	return &PlayHandler{
		codeService:   codeService,
		answerService: answerService,
		hub:           hub,
	}
}

type RedeemRequest struct {
	Code  string `json:"code" binding:"required"`
	Email string `json:"email"`
}

type SubmitAnswerRequest struct {
	PuzzleID uint   `json:"puzzle_id" binding:"required"`
	Answer   string `json:"answer"`
}

func (h *PlayHandler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redemption, err := h.codeService.Redeem(req.Code, req.Email, time.Now(), h.hub)
	if err != nil {
		respondRedeemError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.BuildSessionView(redemption))
}

func (h *PlayHandler) GetState(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Access code required"})
		return
	}

	// Re-redemption is the state read: within the window it returns the
	// persisted session unchanged.
	redemption, err := h.codeService.Redeem(code, "", time.Now(), h.hub)
	if err != nil {
		respondRedeemError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.BuildSessionView(redemption))
}

func (h *PlayHandler) SubmitAnswer(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Access code required"})
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redemption, err := h.codeService.Redeem(code, "", time.Now(), h.hub)
	if err != nil {
		respondRedeemError(c, err)
		return
	}

	result, err := h.answerService.Submit(redemption, req.PuzzleID, req.Answer, time.Now(), h.hub)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPuzzleNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown puzzle"})
		case errors.Is(err, services.ErrNotAnOption):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Answer must be one of the listed options"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit answer"})
		}
		return
	}

	redemption.Session = result.Session
	c.JSON(http.StatusOK, gin.H{
		"correct":         result.Correct,
		"next_clue":       result.NextClue,
		"clues_exhausted": result.CluesExhausted,
		"finished":        result.Finished,
		"session":         services.BuildSessionView(redemption),
	})
}

func respondRedeemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid code"})
	case errors.Is(err, services.ErrCodeDeactivated):
		c.JSON(http.StatusGone, gin.H{"error": "This code is no longer valid"})
	case errors.Is(err, services.ErrCodeExpired):
		c.JSON(http.StatusGone, gin.H{"error": "The time window for this code has elapsed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem code"})
	}
}
