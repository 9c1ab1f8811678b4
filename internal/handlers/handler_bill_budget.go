package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
)

type recurringBillHandler struct {
	billService portssvc.RecurringBillSvcFacade
}

// RegisterRecurringBillRoutes registers recurring bill routes.
func RegisterRecurringBillRoutes(rg *gin.RouterGroup, billService portssvc.RecurringBillSvcFacade) {
	h := &recurringBillHandler{billService: billService}
	rg.POST("/recurring-bills/:id/pay", h.payBill)
}

// payBill godoc
// @Summary Pay a recurring bill
// @Description Creates the bill's transaction and advances its schedule. A bill is paid at most once per period.
// @Tags recurring-bills
// @Produce  json
// @Param   id path string true "Bill ID"
// @Success 201 {object} dto.Result{data=domain.BillPayment}
// @Failure 404 {object} dto.Result "Bill not found"
// @Failure 409 {object} dto.Result "Already paid this period, or the bill is inactive"
// @Failure 503 {object} dto.Result "Consistency failure, retry"
// @Security BearerAuth
// @Router /recurring-bills/{id}/pay [post]
func (h *recurringBillHandler) payBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	billID := c.Param("id")
	logger = logger.With(slog.String("user_id", userID), slog.String("bill_id", billID))

	payment, err := h.billService.Pay(c.Request.Context(), userID, billID)
	if err != nil {
		respondError(c, logger, err, "Failed to pay recurring bill")
		return
	}

	logger.Info("Recurring bill paid", slog.Time("next_run", payment.Bill.NextRun))
	c.JSON(http.StatusCreated, dto.OK(payment))
}

type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

// RegisterBudgetRoutes registers budget routes. Budgets are read-only here; spending is derived.
func RegisterBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := &budgetHandler{budgetService: budgetService}

	budgets := rg.Group("/budgets")
	{
		budgets.GET("", h.listBudgets)
		budgets.GET("/:id/status", h.getBudgetStatus)
	}
}

// getBudgetStatus godoc
// @Summary Get budget status
// @Description Returns the budget with the amount spent in its period, computed from active expenses
// @Tags budgets
// @Produce  json
// @Param   id path string true "Budget ID"
// @Success 200 {object} dto.Result{data=domain.BudgetStatus}
// @Failure 404 {object} dto.Result "Budget not found"
// @Security BearerAuth
// @Router /budgets/{id}/status [get]
func (h *budgetHandler) getBudgetStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	status, err := h.budgetService.GetBudgetStatus(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get budget status")
		return
	}
	c.JSON(http.StatusOK, dto.OK(status))
}

// listBudgets godoc
// @Summary List budgets with their status
// @Tags budgets
// @Produce  json
// @Success 200 {object} dto.Result{data=[]domain.BudgetStatus}
// @Security BearerAuth
// @Router /budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	statuses, err := h.budgetService.ListBudgetStatuses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list budgets")
		return
	}
	c.JSON(http.StatusOK, dto.OK(statuses))
}
