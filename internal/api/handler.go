package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"
	"marketplace-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	users    *service.UserService
	catalog  *service.CatalogService
	cart     *service.CartService
	checkout *service.CheckoutService
	ledger   *service.OrderLedger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *service.UserService,
	catalog *service.CatalogService,
	cart *service.CartService,
	checkout *service.CheckoutService,
	ledger *service.OrderLedger,
) *Handler {
	return &Handler{
		users:    users,
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		ledger:   ledger,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/marketplace/api")
	{
		api.POST("/sign-up", h.signUp)
		api.POST("/sign-in", h.signIn)

		api.POST("/add-product", h.addProduct)
		api.GET("/products", h.getAllProducts)
		api.GET("/product/:pid", h.getProduct)
		api.GET("/find-products/:title", h.findProducts)
		api.DELETE("/delete-product/:pid", h.deleteProduct)

		api.POST("/add-product-to-cart", h.addProductToCart)
		api.DELETE("/remove-product-from-cart", h.removeProductFromCart)
		api.POST("/get-user-cart", h.getUserCart)
		api.POST("/complete-cart", h.completeCart)

		api.GET("/order/:order_id", h.getOrder)
	}
}

// renderError maps the domain error taxonomy to wire-level status codes.
// Validation and not-found conditions are expected outcomes; everything
// else is fatal for the request.
func renderError(c *gin.Context, err error) {
	switch {
	case models.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, models.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
	case errors.Is(err, models.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
	case errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, models.ErrItemNotInCart):
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not in cart anymore"})
	case errors.Is(err, models.ErrEmptyCart):
		c.JSON(http.StatusNotFound, gin.H{"message": "User's cart is empty"})
	case errors.Is(err, models.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, models.ErrBadCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Incorrect password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type signUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// signUp handles user registration
func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := h.users.SignUp(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "User signed up successfully",
		"new_user": user,
	})
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// signIn handles user login
func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.users.SignIn(c.Request.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Username not found"})
			return
		}
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// addProductRequest keeps price and inventory_count as raw JSON values so
// the catalog can run its full validation chain, type checks included.
type addProductRequest struct {
	Title          string      `json:"title"`
	Price          interface{} `json:"price"`
	InventoryCount interface{} `json:"inventory_count"`
}

// addProduct handles product creation
func (h *Handler) addProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	product, err := h.catalog.Add(c.Request.Context(), req.Title, req.Price, req.InventoryCount)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"added_product": product})
}

// getAllProducts handles catalog listing. The empty catalog maps to a 404
// here, not in the core.
func (h *Handler) getAllProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product(s) not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles a single product read
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.Get(c.Request.Context(), c.Param("pid"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// findProducts handles case-insensitive title search
func (h *Handler) findProducts(c *gin.Context) {
	products, err := h.catalog.Search(c.Request.Context(), c.Param("title"))
	if err != nil {
		renderError(c, err)
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product(s) not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// deleteProduct handles product removal
func (h *Handler) deleteProduct(c *gin.Context) {
	product, err := h.catalog.Delete(c.Request.Context(), c.Param("pid"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Product deleted successfully",
		"removed_product": product,
	})
}

type cartItemRequest struct {
	Username  string `json:"username"`
	ProductID string `json:"product_id"`
}

// addProductToCart handles adding a cart entry
func (h *Handler) addProductToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	product, err := h.cart.AddItem(c.Request.Context(), req.Username, req.ProductID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added_product_to_cart": gin.H{
			"message":  "Product added to cart successfully",
			"username": req.Username,
			"product":  product,
		},
	})
}

// removeProductFromCart handles removing the first matching cart entry
func (h *Handler) removeProductFromCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	product, err := h.cart.RemoveItem(c.Request.Context(), req.Username, req.ProductID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"removed_product_from_cart": gin.H{
			"message":  "Product removed from cart successfully",
			"username": req.Username,
			"product":  product,
		},
	})
}

type usernameRequest struct {
	Username string `json:"username"`
}

// getUserCart handles resolving a user's cart
func (h *Handler) getUserCart(c *gin.Context) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	view, err := h.cart.Resolve(c.Request.Context(), req.Username)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_cart": view,
		"username":  req.Username,
	})
}

// completeCart handles checkout
func (h *Handler) completeCart(c *gin.Context) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	order, affected, err := h.checkout.Checkout(c.Request.Context(), req.Username)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":             order,
		"affected_products": affected,
	})
}

// getOrder handles a single order read
func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.ledger.GetByID(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
