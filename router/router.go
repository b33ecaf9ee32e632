package router

import (
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/controllers"
	"github.com/dimasprayoga/warung-pos/middlewares"
	"github.com/dimasprayoga/warung-pos/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Limiter global per IP; harus terpasang sebelum route didaftarkan
	// supaya masuk ke handler chain semua endpoint.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	categoryCtrl := controllers.NewCategoryController(db)
	productCtrl := controllers.NewProductController(db)
	promoCtrl := controllers.NewPromoController(db)
	expenseCtrl := controllers.NewExpenseController(db)
	transactionCtrl := controllers.NewTransactionController(db)
	qrisEnabled := os.Getenv("MIDTRANS_SERVER_KEY") != ""
	if qrisEnabled {
		transactionCtrl.WithQRIS(services.NewQRISService())
	}
	syncCtrl := controllers.NewSyncController(db)
	reconciliationCtrl := controllers.NewReconciliationController(db)
	dashboardCtrl := controllers.NewDashboardController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Webhook Midtrans; dipanggil server-to-server, validasi lewat signature
	if qrisEnabled {
		r.POST("/payments/callback", controllers.HandlePaymentCallback)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)

		// Kitchen display / dashboard WebSocket
		auth.GET("/kds/ws", controllers.KDSHandler)

		// Master data (baca: semua role login)
		auth.GET("/categories", categoryCtrl.GetAllCategories)
		auth.GET("/products", productCtrl.GetAllProducts)
		auth.GET("/products/:product_id", productCtrl.GetProductByID)
		auth.GET("/promos", promoCtrl.GetAllPromos)

		// Checkout + transaksi (kasir)
		cashier := auth.Group("/")
		cashier.Use(middlewares.RequireRole("cashier", "owner"))
		{
			cashier.POST("/transactions", transactionCtrl.CreateTransaction)
			cashier.GET("/transactions", transactionCtrl.GetAllTransactions)
			cashier.GET("/transactions/:transaction_id", transactionCtrl.GetTransactionByID)

			// Sync antrian offline
			cashier.POST("/sync", syncCtrl.SyncTransactions)
		}

		// Manajemen (owner/admin)
		manage := auth.Group("/")
		manage.Use(middlewares.RequireRole("owner"))
		{
			manage.POST("/categories", categoryCtrl.CreateCategory)
			manage.PATCH("/categories/:category_id", categoryCtrl.UpdateCategory)
			manage.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)

			manage.POST("/products", productCtrl.CreateProduct)
			manage.PATCH("/products/:product_id", productCtrl.UpdateProduct)
			manage.PATCH("/products/:product_id/stock", productCtrl.AdjustStock)
			manage.DELETE("/products/:product_id", productCtrl.DeleteProduct)

			manage.POST("/promos", promoCtrl.CreatePromo)
			manage.PATCH("/promos/:promo_id", promoCtrl.UpdatePromo)
			manage.DELETE("/promos/:promo_id", promoCtrl.DeletePromo)

			manage.GET("/expenses", expenseCtrl.GetAllExpenses)
			manage.POST("/expenses", expenseCtrl.CreateExpense)
			manage.DELETE("/expenses/:expense_id", expenseCtrl.DeleteExpense)

			manage.DELETE("/transactions/:transaction_id", transactionCtrl.DeleteTransaction)

			manage.GET("/reconciliation", reconciliationCtrl.GetReconciliation)
			manage.GET("/dashboard/stats", dashboardCtrl.GetDashboardStats)

			manage.GET("/users", userCtrl.GetAllUsers)
			manage.PATCH("/users/:user_id", userCtrl.UpdateUser)
			manage.DELETE("/users/:user_id", userCtrl.DeleteUser)
		}
	}

	return r
}
