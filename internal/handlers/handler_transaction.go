package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests related to personal transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// RegisterTransactionRoutes registers routes related to personal transactions.
func RegisterTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	registerValidators()
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:id", h.getTransaction)
		transactions.PUT("/:id", h.updateTransaction)
		transactions.DELETE("/:id", h.deleteTransaction)
		transactions.PATCH("/:id/restore", h.restoreTransaction)
	}
}

// createTransaction godoc
// @Summary Create a transaction
// @Description Records a transaction and applies its effect to the wallet balance(s) atomically
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.Result{data=dto.TransactionResponse}
// @Failure 400 {object} dto.Result "Validation error"
// @Failure 401 {object} dto.Result "Unauthorized"
// @Failure 404 {object} dto.Result "Wallet or category not found"
// @Failure 422 {object} dto.Result "Category direction does not match the transaction type"
// @Failure 503 {object} dto.Result "Consistency failure, retry"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind JSON for CreateTransaction")
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("wallet_id", req.WalletID))
	logger.Info("Received request to create transaction", slog.String("type", string(req.Type)))

	details, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created successfully", slog.String("transaction_id", details.TransactionID))
	c.JSON(http.StatusCreated, dto.OK(dto.ToTransactionDetailsResponse(details)))
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists the caller's active transactions, newest first, with token pagination
// @Tags transactions
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Param   walletID query string false "Only transactions touching this wallet"
// @Param   categoryID query string false "Only transactions in this category"
// @Param   type query string false "Only transactions of this type"
// @Param   from query string false "First day, inclusive (YYYY-MM-DD)"
// @Param   to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} dto.Result{data=dto.ListTransactionsResponse}
// @Failure 400 {object} dto.Result "Invalid query parameters"
// @Failure 401 {object} dto.Result "Unauthorized"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind query params for ListTransactions")
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}

	logger.Info("Transactions listed successfully", slog.Int("count", len(resp.Transactions)))
	c.JSON(http.StatusOK, dto.OK(resp))
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Retrieves a transaction with its wallets and category populated
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.Result{data=dto.TransactionResponse}
// @Failure 401 {object} dto.Result "Unauthorized"
// @Failure 404 {object} dto.Result "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	transactionID := c.Param("id")

	details, err := h.transactionService.GetTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to get transaction")
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTransactionDetailsResponse(details)))
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Replaces the old balance effect with the new one in a single atomic unit
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} dto.Result{data=dto.TransactionResponse}
// @Failure 400 {object} dto.Result "Validation error"
// @Failure 401 {object} dto.Result "Unauthorized"
// @Failure 404 {object} dto.Result "Transaction, wallet or category not found"
// @Failure 422 {object} dto.Result "Category direction does not match the transaction type"
// @Failure 503 {object} dto.Result "Consistency failure, retry"
// @Security BearerAuth
// @Router /transactions/{id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	transactionID := c.Param("id")

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind JSON for UpdateTransaction")
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("transaction_id", transactionID))
	logger.Info("Received request to update transaction")

	details, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update transaction")
		return
	}

	logger.Info("Transaction updated successfully")
	c.JSON(http.StatusOK, dto.OK(dto.ToTransactionDetailsResponse(details)))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Soft-deletes a transaction and reverts its balance effect
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.Result "Unauthorized"
// @Failure 404 {object} dto.Result "Transaction not found"
// @Failure 503 {object} dto.Result "Consistency failure, retry"
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	transactionID := c.Param("id")
	logger = logger.With(slog.String("user_id", userID), slog.String("transaction_id", transactionID))

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondError(c, logger, err, "Failed to delete transaction")
		return
	}

	logger.Info("Transaction deleted successfully")
	c.Status(http.StatusNoContent)
}

// restoreTransaction godoc
// @Summary Restore a deleted transaction
// @Description Clears the deletion mark and re-applies the balance effect
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.Result{data=dto.TransactionResponse}
// @Failure 401 {object} dto.Result "Unauthorized"
// @Failure 404 {object} dto.Result "Transaction not found"
// @Failure 409 {object} dto.Result "Transaction is not deleted"
// @Failure 503 {object} dto.Result "Consistency failure, retry"
// @Security BearerAuth
// @Router /transactions/{id}/restore [patch]
func (h *transactionHandler) restoreTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	transactionID := c.Param("id")
	logger = logger.With(slog.String("user_id", userID), slog.String("transaction_id", transactionID))

	details, err := h.transactionService.RestoreTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondError(c, logger, err, "Failed to restore transaction")
		return
	}

	logger.Info("Transaction restored successfully")
	c.JSON(http.StatusOK, dto.OK(dto.ToTransactionDetailsResponse(details)))
}
