package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopswift-api/middleware"
	"shopswift-api/models"
	"shopswift-api/services"
	"shopswift-api/utils"
)

// CartController serves the authenticated user's cart.
type CartController struct {
	cart services.CartService
}

// NewCartController creates a CartController.
func NewCartController(cart services.CartService) *CartController {
	return &CartController{cart: cart}
}

// GetCart returns the cart, creating an empty one on first access.
func (cc *CartController) GetCart(c *gin.Context) {
	user := middleware.CurrentUser(c)
	cart, appErr := cc.cart.GetOrCreate(c.Request.Context(), user.ID)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	cc.respond(c, http.StatusOK, cart)
}

// AddItem adds a product to the cart or merges it into an existing line.
func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	cart, appErr := cc.cart.AddItem(c.Request.Context(), user.ID, &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	cc.respond(c, http.StatusOK, cart)
}

// UpdateItem sets a line's quantity; zero removes the line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	cart, appErr := cc.cart.UpdateItem(c.Request.Context(), user.ID, &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	cc.respond(c, http.StatusOK, cart)
}

// RemoveItem deletes one line from the cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	cart, appErr := cc.cart.RemoveItem(c.Request.Context(), user.ID, productID)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	cc.respond(c, http.StatusOK, cart)
}

// ClearCart empties the cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	user := middleware.CurrentUser(c)
	cart, appErr := cc.cart.Clear(c.Request.Context(), user.ID)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	cc.respond(c, http.StatusOK, cart)
}

func (cc *CartController) respond(c *gin.Context, code int, cart *models.Cart) {
	utils.SendSuccess(c, code, gin.H{
		"cart":  cart,
		"total": utils.Round2(cart.TotalValue()),
	})
}
