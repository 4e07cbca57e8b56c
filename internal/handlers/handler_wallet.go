package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/dto"
	"github.com/renohub/reno_backend/internal/middleware"
)

// walletHandler exposes the caller's wallet and ledger history.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

func newWalletHandler(walletService portssvc.WalletSvcFacade) *walletHandler {
	return &walletHandler{walletService: walletService}
}

// getMyWallet godoc
// @Summary Get the caller's wallet
// @Tags wallets
// @Produce json
// @Success 200 {object} dto.WalletResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /wallets/me [get]
func (h *walletHandler) getMyWallet(c *gin.Context) {
	craftsmanID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), craftsmanID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// listMyTransactions godoc
// @Summary List the caller's wallet ledger, newest first
// @Tags wallets
// @Produce json
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListWalletTransactionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /wallets/me/transactions [get]
func (h *walletHandler) listMyTransactions(c *gin.Context) {
	craftsmanID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	params := dto.ListWalletTransactionsParams{}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}

	resp, err := h.walletService.ListTransactions(c.Request.Context(), craftsmanID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// registerWalletRoutes registers wallet specific routes
func registerWalletRoutes(group *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	wallets := group.Group("/wallets")
	wallets.GET("/me", h.getMyWallet)
	wallets.GET("/me/transactions", h.listMyTransactions)
}
