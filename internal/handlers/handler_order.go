package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/dto"
	"github.com/renohub/reno_backend/internal/middleware"
)

// orderHandler handles HTTP requests for the order lifecycle: creation,
// acceptance, pricing, payment confirmation, acceptance of work and
// assignment to subcontractors.
type orderHandler struct {
	orderService      portssvc.OrderSvcFacade
	assignmentService portssvc.AssignmentSvcFacade
}

func newOrderHandler(orderService portssvc.OrderSvcFacade, assignmentService portssvc.AssignmentSvcFacade) *orderHandler {
	return &orderHandler{orderService: orderService, assignmentService: assignmentService}
}

// createOrder godoc
// @Summary Create a new work order
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Order details"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /orders [post]
func (h *orderHandler) createOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createOrder", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req, requesterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

// getOrder godoc
// @Summary Get an order with its work price items
// @Tags orders
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} map[string]string "Order not found"
// @Router /orders/{orderID} [get]
func (h *orderHandler) getOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("orderID"), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// listOrders godoc
// @Summary List the caller's orders
// @Description Returns orders where the caller is requester or craftsman, newest first
// @Tags orders
// @Produce json
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListOrdersResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /orders [get]
func (h *orderHandler) listOrders(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	params := dto.ListOrdersParams{}
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

	resp, err := h.orderService.ListOrders(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// acceptOrder godoc
// @Summary Accept a pending order as the executing craftsman
// @Tags orders
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} map[string]string "Order not pending"
// @Router /orders/{orderID}/accept [post]
func (h *orderHandler) acceptOrder(c *gin.Context) {
	craftsmanID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orderService.AcceptOrder(c.Request.Context(), c.Param("orderID"), craftsmanID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// addWorkPrices godoc
// @Summary Add a price group to an accepted order
// @Description The first batch becomes the main group; later batches become sub groups
// @Tags orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID"
// @Param items body dto.AddWorkPricesRequest true "Work price items"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 403 {object} map[string]string "Not the executing craftsman"
// @Router /orders/{orderID}/work-prices [post]
func (h *orderHandler) addWorkPrices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AddWorkPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for addWorkPrices", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	craftsmanID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orderService.AddWorkPrices(c.Request.Context(), c.Param("orderID"), req, craftsmanID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// confirmPayment godoc
// @Summary Confirm payment of a price group
// @Description Invoked after the payment gateway signals the money arrived platform-side
// @Tags orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID"
// @Param group body dto.WorkGroupSelectorRequest true "Group selector"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string "Group already paid"
// @Router /orders/{orderID}/payments [post]
func (h *orderHandler) confirmPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.WorkGroupSelectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for confirmPayment", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.orderService.ConfirmPayment(c.Request.Context(), c.Param("orderID"), req.ToSelector(), requesterID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paid"})
}

// acceptWorkGroup godoc
// @Summary Accept a whole paid price group
// @Description Settles the group: construction payout, possible completion and deposit freeze
// @Tags orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID"
// @Param group body dto.WorkGroupSelectorRequest true "Group selector"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} map[string]string "Group unpaid or already accepted"
// @Router /orders/{orderID}/acceptances [post]
func (h *orderHandler) acceptWorkGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.WorkGroupSelectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for acceptWorkGroup", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orderService.AcceptWorkGroup(c.Request.Context(), c.Param("orderID"), req.ToSelector(), requesterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// acceptWorkItem godoc
// @Summary Accept a single qualifying work item of a gangmaster order
// @Description Releases a 25% advance of the coordination fee
// @Tags orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID"
// @Param item body dto.AcceptSingleItemRequest true "Item to accept"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} map[string]string "Item unpaid or already accepted"
// @Router /orders/{orderID}/acceptances/item [post]
func (h *orderHandler) acceptWorkItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AcceptSingleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for acceptWorkItem", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orderService.AcceptWorkItem(c.Request.Context(), c.Param("orderID"), req.ItemID, requesterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// assignWorkItems godoc
// @Summary Assign work items of a gangmaster order to a subcontractor
// @Description Clones the items into the craftsman's derived sub-order
// @Tags orders
// @Accept json
// @Produce json
// @Param orderID path string true "Parent order ID"
// @Param assignment body dto.AssignWorkItemsRequest true "Items and craftsman"
// @Success 200 {object} dto.OrderResponse "The derived sub-order"
// @Failure 400 {object} map[string]string "Mixed groups or item already assigned"
// @Router /orders/{orderID}/assignments [post]
func (h *orderHandler) assignWorkItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AssignWorkItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for assignWorkItems", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	derived, err := h.assignmentService.AssignWorkItems(c.Request.Context(), c.Param("orderID"), req, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(derived))
}

// cancelOrder godoc
// @Summary Cancel a pending or accepted order
// @Description Flips the status only; money already moved is not reversed
// @Tags orders
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string "Order already completed or cancelled"
// @Router /orders/{orderID}/cancel [post]
func (h *orderHandler) cancelOrder(c *gin.Context) {
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.orderService.CancelOrder(c.Request.Context(), c.Param("orderID"), requesterID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// registerOrderRoutes registers order specific routes
func registerOrderRoutes(group *gin.RouterGroup, orderService portssvc.OrderSvcFacade, assignmentService portssvc.AssignmentSvcFacade) {
	h := newOrderHandler(orderService, assignmentService)

	orders := group.Group("/orders")
	orders.POST("", h.createOrder)
	orders.GET("", h.listOrders)
	orders.GET("/:orderID", h.getOrder)
	orders.POST("/:orderID/accept", h.acceptOrder)
	orders.POST("/:orderID/work-prices", h.addWorkPrices)
	orders.POST("/:orderID/payments", h.confirmPayment)
	orders.POST("/:orderID/acceptances", h.acceptWorkGroup)
	orders.POST("/:orderID/acceptances/item", h.acceptWorkItem)
	orders.POST("/:orderID/assignments", h.assignWorkItems)
	orders.POST("/:orderID/cancel", h.cancelOrder)
}
