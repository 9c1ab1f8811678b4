package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
)

// groupHandler handles group transactions and group wallet management.
type groupHandler struct {
	groupService portssvc.GroupTransactionSvcFacade
}

// RegisterGroupRoutes registers routes scoped to a group. Membership is checked by the service.
func RegisterGroupRoutes(rg *gin.RouterGroup, groupService portssvc.GroupTransactionSvcFacade) {
	registerValidators()
	h := &groupHandler{groupService: groupService}

	groups := rg.Group("/groups/:groupID")
	{
		groups.POST("/transactions", h.createGroupTransaction)
		groups.GET("/transactions", h.listGroupTransactions)
		groups.PUT("/transactions/:id", h.updateGroupTransaction)
		groups.DELETE("/transactions/:id", h.deleteGroupTransaction)
		groups.PATCH("/wallets/:walletID/disable", h.disableGroupWallet)
	}
}

// createGroupTransaction godoc
// @Summary Create a group transaction
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   transaction body dto.CreateGroupTransactionRequest true "Group transaction details"
// @Success 201 {object} dto.Result{data=domain.GroupTransaction}
// @Failure 400 {object} dto.Result "Validation error"
// @Failure 403 {object} dto.Result "Not a member of the group"
// @Failure 404 {object} dto.Result "Group wallet not found"
// @Failure 409 {object} dto.Result "Group wallet is disabled"
// @Security BearerAuth
// @Router /groups/{groupID}/transactions [post]
func (h *groupHandler) createGroupTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	groupID := c.Param("groupID")

	var req dto.CreateGroupTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind JSON for CreateGroupTransaction")
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("group_id", groupID))
	txn, err := h.groupService.CreateGroupTransaction(c.Request.Context(), userID, groupID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create group transaction")
		return
	}

	logger.Info("Group transaction created successfully", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.OK(txn))
}

// listGroupTransactions godoc
// @Summary List group transactions
// @Tags groups
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.Result{data=[]domain.GroupTransaction}
// @Failure 403 {object} dto.Result "Not a member of the group"
// @Security BearerAuth
// @Router /groups/{groupID}/transactions [get]
func (h *groupHandler) listGroupTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	groupID := c.Param("groupID")

	var params dto.ListGroupTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind query params for ListGroupTransactions")
		return
	}

	txns, err := h.groupService.ListGroupTransactions(c.Request.Context(), userID, groupID, params)
	if err != nil {
		respondError(c, logger.With(slog.String("group_id", groupID)), err, "Failed to list group transactions")
		return
	}
	c.JSON(http.StatusOK, dto.OK(txns))
}

// updateGroupTransaction godoc
// @Summary Update a group transaction
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   id path string true "Transaction ID"
// @Param   transaction body dto.UpdateGroupTransactionRequest true "Fields to change"
// @Success 200 {object} dto.Result{data=domain.GroupTransaction}
// @Failure 400 {object} dto.Result "Validation error"
// @Failure 403 {object} dto.Result "Not a member of the group"
// @Failure 404 {object} dto.Result "Transaction not found"
// @Security BearerAuth
// @Router /groups/{groupID}/transactions/{id} [put]
func (h *groupHandler) updateGroupTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	groupID, transactionID := c.Param("groupID"), c.Param("id")

	var req dto.UpdateGroupTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind JSON for UpdateGroupTransaction")
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("transaction_id", transactionID))
	txn, err := h.groupService.UpdateGroupTransaction(c.Request.Context(), userID, groupID, transactionID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update group transaction")
		return
	}

	logger.Info("Group transaction updated successfully")
	c.JSON(http.StatusOK, dto.OK(txn))
}

// deleteGroupTransaction godoc
// @Summary Delete a group transaction
// @Tags groups
// @Param   groupID path string true "Group ID"
// @Param   id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.Result "Not a member of the group"
// @Failure 404 {object} dto.Result "Transaction not found"
// @Security BearerAuth
// @Router /groups/{groupID}/transactions/{id} [delete]
func (h *groupHandler) deleteGroupTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	groupID, transactionID := c.Param("groupID"), c.Param("id")
	logger = logger.With(slog.String("group_id", groupID), slog.String("transaction_id", transactionID))

	if err := h.groupService.DeleteGroupTransaction(c.Request.Context(), userID, groupID, transactionID); err != nil {
		respondError(c, logger, err, "Failed to delete group transaction")
		return
	}

	logger.Info("Group transaction deleted successfully")
	c.Status(http.StatusNoContent)
}

// disableGroupWallet godoc
// @Summary Disable a group wallet
// @Description A disabled wallet rejects new transactions. Requires ADMIN or OWNER.
// @Tags groups
// @Param   groupID path string true "Group ID"
// @Param   walletID path string true "Group wallet ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.Result "Insufficient role"
// @Failure 404 {object} dto.Result "Group wallet not found"
// @Security BearerAuth
// @Router /groups/{groupID}/wallets/{walletID}/disable [patch]
func (h *groupHandler) disableGroupWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	groupID, walletID := c.Param("groupID"), c.Param("walletID")
	logger = logger.With(slog.String("group_id", groupID), slog.String("wallet_id", walletID))

	if err := h.groupService.DisableGroupWallet(c.Request.Context(), userID, groupID, walletID); err != nil {
		respondError(c, logger, err, "Failed to disable group wallet")
		return
	}

	logger.Info("Group wallet disabled")
	c.Status(http.StatusNoContent)
}
