package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
)

// walletHandler handles wallet reads and maintenance.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

// RegisterWalletRoutes registers wallet routes.
func RegisterWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := &walletHandler{walletService: walletService}

	wallets := rg.Group("/wallets")
	{
		wallets.GET("", h.listWallets)
		wallets.GET("/:id", h.getWallet)
		wallets.PUT("/:id/default", h.setDefaultWallet)
		wallets.POST("/:id/recalculate", h.recalculateBalance)
	}
}

// listWallets godoc
// @Summary List wallets
// @Description Lists the caller's wallets with the total balance of the non-archived ones
// @Tags wallets
// @Produce  json
// @Success 200 {object} dto.Result{data=domain.WalletSummary}
// @Security BearerAuth
// @Router /wallets [get]
func (h *walletHandler) listWallets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	summary, err := h.walletService.ListWallets(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list wallets")
		return
	}
	c.JSON(http.StatusOK, dto.OK(summary))
}

// getWallet godoc
// @Summary Get a wallet
// @Tags wallets
// @Produce  json
// @Param   id path string true "Wallet ID"
// @Success 200 {object} dto.Result{data=domain.Wallet}
// @Failure 404 {object} dto.Result "Wallet not found"
// @Security BearerAuth
// @Router /wallets/{id} [get]
func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get wallet")
		return
	}
	c.JSON(http.StatusOK, dto.OK(wallet))
}

// setDefaultWallet godoc
// @Summary Make a wallet the default
// @Description Clears the flag on every other wallet of the caller in the same unit
// @Tags wallets
// @Produce  json
// @Param   id path string true "Wallet ID"
// @Success 200 {object} dto.Result{data=domain.Wallet}
// @Failure 404 {object} dto.Result "Wallet not found"
// @Failure 409 {object} dto.Result "Wallet is archived"
// @Security BearerAuth
// @Router /wallets/{id}/default [put]
func (h *walletHandler) setDefaultWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	walletID := c.Param("id")
	logger = logger.With(slog.String("user_id", userID), slog.String("wallet_id", walletID))

	wallet, err := h.walletService.SetDefaultWallet(c.Request.Context(), userID, walletID)
	if err != nil {
		respondError(c, logger, err, "Failed to set default wallet")
		return
	}

	logger.Info("Default wallet changed")
	c.JSON(http.StatusOK, dto.OK(wallet))
}

// recalculateBalance godoc
// @Summary Recalculate a wallet balance
// @Description Rebuilds the stored balance from the initial balance and every active transaction
// @Tags wallets
// @Produce  json
// @Param   id path string true "Wallet ID"
// @Success 200 {object} dto.Result{data=domain.Wallet}
// @Failure 404 {object} dto.Result "Wallet not found"
// @Security BearerAuth
// @Router /wallets/{id}/recalculate [post]
func (h *walletHandler) recalculateBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	walletID := c.Param("id")
	logger = logger.With(slog.String("user_id", userID), slog.String("wallet_id", walletID))

	wallet, err := h.walletService.RecalculateBalance(c.Request.Context(), userID, walletID)
	if err != nil {
		respondError(c, logger, err, "Failed to recalculate wallet balance")
		return
	}

	logger.Info("Wallet balance recalculated", slog.String("balance", wallet.Balance.String()))
	c.JSON(http.StatusOK, dto.OK(wallet))
}

type categoryHandler struct {
	categoryService portssvc.CategorySvcFacade
}

// RegisterCategoryRoutes registers category routes.
func RegisterCategoryRoutes(rg *gin.RouterGroup, categoryService portssvc.CategorySvcFacade) {
	h := &categoryHandler{categoryService: categoryService}

	categories := rg.Group("/categories")
	{
		categories.POST("", h.createCategory)
		categories.PATCH("/:id/parent", h.updateCategoryParent)
	}
}

// createCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   category body dto.CreateCategoryRequest true "Category details"
// @Success 201 {object} dto.Result{data=domain.Category}
// @Failure 400 {object} dto.Result "Validation error"
// @Failure 404 {object} dto.Result "Parent not found"
// @Security BearerAuth
// @Router /categories [post]
func (h *categoryHandler) createCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind JSON for CreateCategory")
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create category")
		return
	}

	logger.Info("Category created successfully", slog.String("category_id", category.CategoryID))
	c.JSON(http.StatusCreated, dto.OK(category))
}

// updateCategoryParent godoc
// @Summary Move a category
// @Description Sets or clears the parent. Moves that would create a cycle are rejected.
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   id path string true "Category ID"
// @Param   parent body dto.UpdateCategoryParentRequest true "New parent"
// @Success 200 {object} dto.Result{data=domain.Category}
// @Failure 400 {object} dto.Result "Cycle or type mismatch"
// @Failure 404 {object} dto.Result "Category not found"
// @Security BearerAuth
// @Router /categories/{id}/parent [patch]
func (h *categoryHandler) updateCategoryParent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	categoryID := c.Param("id")

	var req dto.UpdateCategoryParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, logger, bindingError(err), "Failed to bind JSON for UpdateCategoryParent")
		return
	}

	category, err := h.categoryService.UpdateCategoryParent(c.Request.Context(), userID, categoryID, req)
	if err != nil {
		respondError(c, logger.With(slog.String("category_id", categoryID)), err, "Failed to move category")
		return
	}
	c.JSON(http.StatusOK, dto.OK(category))
}
