package router

import (
	"techshop/domain"
	"techshop/internal/middleware"
	"techshop/internal/rest"

	"github.com/labstack/echo/v4"
)

// Middlewares bundles the gates shared by route groups.
type Middlewares struct {
	AuthRequired echo.MiddlewareFunc
	OptionalAuth echo.MiddlewareFunc
	StaffOnly    echo.MiddlewareFunc
	Loader       middleware.StaffLoader
}

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, mw Middlewares) {
	users := api.Group("/users")

	users.GET("/email-verification", handler.VerifyEmail)
	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	selfOrManager := middleware.SelfOrPermission(mw.Loader, domain.PermManageCustomers)
	users.GET("/:id", handler.GetUserByID, mw.AuthRequired, selfOrManager)
	users.PUT("/:id", handler.UpdateUser, mw.AuthRequired, selfOrManager)
	users.GET("", handler.GetAllUsers, mw.AuthRequired, mw.StaffOnly, middleware.RequirePermission(domain.PermManageCustomers))
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, mw Middlewares) {
	categories := api.Group("/categories")
	manage := []echo.MiddlewareFunc{mw.AuthRequired, mw.StaffOnly, middleware.RequirePermission(domain.PermManageProducts)}

	categories.GET("", handler.GetAllCategories)
	categories.GET("/:id", handler.GetCategoryByID)
	categories.POST("", handler.CreateCategory, manage...)
	categories.PUT("/:id", handler.UpdateCategory, manage...)
	categories.DELETE("/:id", handler.DeleteCategory, manage...)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, mw Middlewares) {
	products := api.Group("/products")
	manage := []echo.MiddlewareFunc{mw.AuthRequired, mw.StaffOnly, middleware.RequirePermission(domain.PermManageProducts)}
	inventory := []echo.MiddlewareFunc{mw.AuthRequired, mw.StaffOnly, middleware.RequirePermission(domain.PermManageInventory)}

	products.GET("", handler.GetAllProducts)
	products.GET("/sku/:sku", handler.GetProductBySKU)
	products.GET("/:id", handler.GetProductByID)
	products.GET("/:id/variants", handler.ListVariants)

	products.POST("", handler.CreateProduct, manage...)
	products.PUT("/:id", handler.UpdateProduct, manage...)
	products.DELETE("/:id", handler.DeleteProduct, manage...)
	products.POST("/:id/variants", handler.AddVariant, manage...)
	products.PUT("/:id/variants/:variant_id", handler.UpdateVariant, manage...)

	products.POST("/:id/stock", handler.AdjustStock, inventory...)
	products.GET("/:id/stock/movements", handler.ListMovements, inventory...)
}

func SetupCartRoutes(api *echo.Group, handler *rest.CartHandler, mw Middlewares) {
	cart := api.Group("/cart", mw.OptionalAuth)

	cart.GET("", handler.GetCart)
	cart.DELETE("", handler.Clear)
	cart.POST("/items", handler.AddItem)
	cart.PUT("/items/:item_id", handler.UpdateItem)
	cart.DELETE("/items/:item_id", handler.RemoveItem)
	cart.POST("/merge", handler.Merge, mw.AuthRequired)
}

func SetupCheckoutRoutes(api *echo.Group, handler *rest.CheckoutHandler, mw Middlewares) {
	api.POST("/checkout", handler.Checkout, mw.AuthRequired)
}

func SetOrdersRoutes(api *echo.Group, ordersHandler *rest.OrdersHandler, mw Middlewares) {
	api.GET("/orders/track", ordersHandler.Track)

	orders := api.Group("/orders", mw.AuthRequired)
	orders.GET("", ordersHandler.GetAllOrders)
	orders.GET("/:id", ordersHandler.GetOrderByID)
	orders.GET("/:id/invoice", ordersHandler.Invoice)
}

func SetWebhookHandler(api *echo.Group, webhookHandler *rest.WebhookHandler) {
	webhook := api.Group("/payments")
	webhook.POST("/webhook", webhookHandler.HandleWebhook)
}

// SetupAdminRoutes mounts the staff area. Every route needs an active staff
// profile; dashboards are gated on role, everything else on permission flags.
func SetupAdminRoutes(
	e *echo.Echo,
	mw Middlewares,
	dashboards *rest.DashboardHandler,
	orders *rest.AdminOrdersHandler,
	staff *rest.StaffHandler,
	products *rest.ProductHandler,
) {
	admin := e.Group("/admin", mw.AuthRequired, mw.StaffOnly)

	admin.GET("/me", staff.Me)
	admin.GET("/products", products.GetAllProducts)

	dash := admin.Group("/dashboard")
	dash.GET("", dashboards.Main, middleware.RequireDashboard(domain.DashboardMain))
	dash.GET("/dashboards", dashboards.Dashboards)
	dash.GET("/director", dashboards.Director, middleware.RequireDashboard(domain.DashboardDirector))
	dash.GET("/warehouse", dashboards.Warehouse, middleware.RequireDashboard(domain.DashboardWarehouse))
	dash.GET("/fulfillment", dashboards.Fulfillment, middleware.RequireDashboard(domain.DashboardFulfillment))
	dash.GET("/reports", dashboards.Reports, middleware.RequireDashboard(domain.DashboardReports))

	viewOrders := middleware.RequireAnyPermission(domain.PermManageOrders, domain.PermViewAllOrders)
	manageOrders := middleware.RequirePermission(domain.PermManageOrders)
	adminOrders := admin.Group("/orders")
	adminOrders.GET("", orders.List, viewOrders)
	adminOrders.GET("/:id", orders.Get, viewOrders)
	adminOrders.PUT("/:id/status", orders.UpdateStatus, manageOrders)

	reviews := admin.Group("/reviews", manageOrders)
	reviews.GET("", orders.ListReviews)
	reviews.POST("/:id/resolve", orders.ResolveReview)

	manageStaff := middleware.RequirePermission(domain.PermManageStaff)
	staffGroup := admin.Group("/staff")
	staffGroup.GET("", staff.List, manageStaff)
	staffGroup.POST("", staff.Create, manageStaff)
	staffGroup.PUT("/:id/role", staff.UpdateRole, manageStaff)
	staffGroup.PUT("/:id/permissions", staff.SetPermissions, manageStaff)
	staffGroup.PUT("/:id/active", staff.SetActive, manageStaff)
	staffGroup.POST("/switch-role", staff.SwitchRole)
	staffGroup.POST("/switch-back", staff.SwitchBack)

	admin.GET("/activity", staff.Activity, manageStaff)

	manageSettings := middleware.RequirePermission(domain.PermManageSettings)
	admin.GET("/settings", staff.GetSettings, manageSettings)
	admin.PUT("/settings", staff.UpdateSettings, manageSettings)
}
