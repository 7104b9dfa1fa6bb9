package router

import (
	"time"

	"boardmart/config"
	"boardmart/internal/handler"
	"boardmart/internal/middleware"
	"boardmart/internal/repository"
	"boardmart/internal/service"
	"boardmart/pkg/cloudinary"
	"boardmart/pkg/payment"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, provider payment.Provider, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	walletSvc := service.NewWalletService(db)
	boardSvc := service.NewBoardService(db, &cfg.Boards, settingRepo, walletSvc)
	referralSvc := service.NewReferralService(userRepo, boardSvc)
	authSvc := service.NewAuthService(cfg, userRepo, referralSvc)
	paymentSvc := service.NewPaymentService(db, provider, walletSvc, &cfg.Paystack)
	orderSvc := service.NewOrderService(db, productRepo, walletSvc, paymentSvc, settingRepo)
	migrationSvc := service.NewMigrationService(db, walletSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo, auditRepo)
	walletHandler := handler.NewWalletHandler(walletSvc, paymentSvc)
	boardHandler := handler.NewBoardHandler(boardSvc, boardRepo, userRepo)
	referralHandler := handler.NewReferralHandler(referralSvc, userRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, settingRepo, auditRepo, txnRepo, &cfg.Paystack)
	orderHandler := handler.NewOrderHandler(orderSvc, orderRepo)
	productHandler := handler.NewProductHandler(productRepo, cloud)
	adminHandler := handler.NewAdminHandler(userRepo, boardRepo, txnRepo, orderRepo, settingRepo, auditRepo, paymentSvc, migrationSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	maintenanceMw := middleware.Maintenance(settingRepo, &cfg.JWT)
	// tighter per-member limit on the account surface, keyed by user ID
	meLimit := middleware.RateLimit(middleware.NewRateLimiter(30, 60*time.Second))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(maintenanceMw)
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		// Storefront is browsable without a session.
		api.GET("/products", productHandler.List)
		api.GET("/products/:id", productHandler.Get)
		api.GET("/products/:id/reviews", productHandler.ListReviews)

		me := api.Group("/me")
		me.Use(authMw, meLimit)
		{
			me.GET("/profile", authHandler.Me)
			me.GET("/wallets", walletHandler.GetBalances)
			me.GET("/wallets/transactions", walletHandler.GetTransactions)
			me.POST("/wallets/fund", walletHandler.Fund)
			me.POST("/wallets/withdraw", walletHandler.Withdraw)
			me.GET("/boards", boardHandler.MyBoards)
			me.POST("/boards/claim", boardHandler.Claim)
			me.GET("/referral-code", referralHandler.MyCode)
			me.GET("/referrals", referralHandler.MyReferrals)
			me.GET("/orders", orderHandler.MyOrders)
			me.GET("/transactions", paymentHandler.GetTransactions)
		}

		api.GET("/boards/:board/rewards", authMw, boardHandler.RewardOptions)
		api.POST("/products/:id/reviews", authMw, productHandler.CreateReview)
		api.POST("/orders", authMw, orderHandler.Place)
		api.GET("/orders/:id", authMw, orderHandler.Get)

		payments := api.Group("/payments")
		{
			payments.POST("/registration", authMw, paymentHandler.PayRegistration)
			payments.GET("/verify/:reference", paymentHandler.Verify)
			payments.GET("/verify", paymentHandler.Verify) // gateway callback uses ?reference=
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id/boards", adminHandler.GetUserBoards)
			admin.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.POST("/withdrawals/:id/settle", adminHandler.SettleWithdrawal)
			admin.GET("/orders", orderHandler.ListAll)
			admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
			admin.POST("/products", productHandler.Create)
			admin.PUT("/products/:id", productHandler.Update)
			admin.DELETE("/products/:id", productHandler.Delete)
			admin.POST("/products/upload-image", productHandler.UploadImage)
			admin.POST("/migrations/run", adminHandler.RunMigration)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}

	// Webhooks bypass the maintenance gate so gateway retries keep settling
	// during a shutdown window.
	r.POST("/api/v1/webhooks/paystack", paymentHandler.Webhook)

	return r
}
