package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
)

type savingGoalHandler struct {
	goalService portssvc.SavingGoalSvcFacade
}

// RegisterSavingGoalRoutes registers saving goal routes.
func RegisterSavingGoalRoutes(rg *gin.RouterGroup, goalService portssvc.SavingGoalSvcFacade) {
	registerValidators()
	h := &savingGoalHandler{goalService: goalService}

	goals := rg.Group("/saving-goals")
	{
		goals.GET("/:id", h.getGoal)
		goals.POST("/:id/deposit", h.deposit)
		goals.POST("/:id/withdraw", h.withdraw)
	}
}

// getGoal godoc
// @Summary Get a saving goal
// @Tags saving-goals
// @Produce  json
// @Param   id path string true "Goal ID"
// @Success 200 {object} dto.Result{data=domain.SavingGoal}
// @Failure 404 {object} dto.Result "Goal not found"
// @Security BearerAuth
// @Router /saving-goals/{id} [get]
func (h *savingGoalHandler) getGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoal(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get saving goal")
		return
	}
	c.JSON(http.StatusOK, dto.OK(goal))
}

// deposit godoc
// @Summary Deposit into a saving goal
// @Description Records an expense on the goal's wallet and moves the goal's progress in the same unit
// @Tags saving-goals
// @Accept  json
// @Produce  json
// @Param   id path string true "Goal ID"
// @Param   movement body dto.GoalMovementRequest true "Amount to deposit"
// @Success 201 {object} dto.Result{data=domain.GoalMovement}
// @Failure 400 {object} dto.Result "Invalid amount"
// @Failure 404 {object} dto.Result "Goal not found"
// @Failure 503 {object} dto.Result "Consistency failure, retry"
// @Security BearerAuth
// @Router /saving-goals/{id}/deposit [post]
func (h *savingGoalHandler) deposit(c *gin.Context) {
	h.move(c, "deposit", h.goalService.Deposit)
}

// withdraw godoc
// @Summary Withdraw from a saving goal
// @Description Records an income on the goal's wallet. Fails if the goal holds less than the amount.
// @Tags saving-goals
// @Accept  json
// @Produce  json
// @Param   id path string true "Goal ID"
// @Param   movement body dto.GoalMovementRequest true "Amount to withdraw"
// @Success 201 {object} dto.Result{data=domain.GoalMovement}
// @Failure 400 {object} dto.Result "Invalid amount"
// @Failure 404 {object} dto.Result "Goal not found"
// @Failure 409 {object} dto.Result "Insufficient goal balance"
// @Failure 503 {object} dto.Result "Consistency failure, retry"
// @Security BearerAuth
// @Router /saving-goals/{id}/withdraw [post]
func (h *savingGoalHandler) withdraw(c *gin.Context) {
	h.move(c, "withdraw", h.goalService.Withdraw)
}

type goalMover func(ctx context.Context, userID, goalID string, req dto.GoalMovementRequest) (*domain.GoalMovement, error)

func (h *savingGoalHandler) move(c *gin.Context, op string, fn goalMover) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	goalID := c.Param("id")

	var req dto.GoalMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind JSON for goal "+op)
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("goal_id", goalID), slog.String("op", op))
	movement, err := fn(c.Request.Context(), userID, goalID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to "+op+" saving goal")
		return
	}

	logger.Info("Saving goal updated", slog.String("current_amount", movement.Goal.CurrentAmount.String()))
	c.JSON(http.StatusCreated, dto.OK(movement))
}
