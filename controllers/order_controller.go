package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"shopswift-api/middleware"
	"shopswift-api/models"
	"shopswift-api/services"
	"shopswift-api/utils"
)

// OrderController serves checkout and the order views for customers,
// vendors and admins.
type OrderController struct {
	orders services.OrderService
}

// NewOrderController creates an OrderController.
func NewOrderController(orders services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// PlaceOrder converts the user's cart into an order.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	order, appErr := oc.orders.Place(c.Request.Context(), user.ID, &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	oc.respondOne(c, http.StatusCreated, order)
}

// GetOrder returns one order to its owner or an admin.
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	order, appErr := oc.orders.GetByID(c.Request.Context(), id, middleware.CurrentUser(c))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	oc.respondOne(c, http.StatusOK, order)
}

// ListMyOrders returns the authenticated user's order history.
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)
	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{})

	orders, total, appErr := oc.orders.ListForUser(c.Request.Context(), user.ID, features)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	oc.respondList(c, orders, features.Meta(total))
}

// ListAllOrders returns every order, for admins.
func (oc *OrderController) ListAllOrders(c *gin.Context) {
	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{})

	orders, total, appErr := oc.orders.ListAll(c.Request.Context(), features)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	oc.respondList(c, orders, features.Meta(total))
}

// ListVendorOrders returns orders containing at least one of the vendor's
// products.
func (oc *OrderController) ListVendorOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)
	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{})

	orders, total, appErr := oc.orders.ListForVendor(c.Request.Context(), user.ID, features)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	oc.respondList(c, orders, features.Meta(total))
}

// UpdateOrderStatus advances the order state machine.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	order, appErr := oc.orders.UpdateStatus(c.Request.Context(), id, req.Status, middleware.CurrentUser(c))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	oc.respondOne(c, http.StatusOK, order)
}

// MarkOrderPaid confirms an out-of-band payment for the order.
func (oc *OrderController) MarkOrderPaid(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	order, appErr := oc.orders.MarkPaid(c.Request.Context(), id, c.Query("transaction_id"), middleware.CurrentUser(c))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	oc.respondOne(c, http.StatusOK, order)
}

func (oc *OrderController) respondOne(c *gin.Context, code int, order *models.Order) {
	utils.SendSuccess(c, code, gin.H{
		"order":       order,
		"grand_total": utils.Round2(order.GrandTotal()),
	})
}

func (oc *OrderController) respondList(c *gin.Context, orders []*models.Order, meta utils.PaginationMeta) {
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": meta,
	})
}
