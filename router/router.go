package router

import (
	"log/slog"
	"net/http"
	"time"

	"ledger/api"
	"ledger/config"
	"ledger/middleware"
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, l *service.Ledger, rep *service.Reporter) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(slog.Default()))

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	contactHandler := api.NewContactHandler(l)
	productHandler := api.NewProductHandler(l)
	transactionHandler := api.NewTransactionHandler(l)
	paymentHandler := api.NewPaymentHandler(l)
	loanHandler := api.NewLoanHandler(l)
	capitalHandler := api.NewCapitalHandler(l.Capital())
	cashFlowHandler := api.NewCashFlowHandler(l)
	reportHandler := api.NewReportHandler(rep)
	exportHandler := api.NewExportHandler(l, rep)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.WriteRateLimit(cfg.Ledger.WriteRateLimit, time.Minute))
	{
		contacts := v1.Group("/contacts")
		{
			contacts.POST("", contactHandler.Create)
			contacts.GET("", contactHandler.List)
			contacts.GET("/:id", contactHandler.Get)
			contacts.PUT("/:id", contactHandler.Update)
			contacts.DELETE("/:id", contactHandler.Delete)
		}

		products := v1.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
		}

		// 进/出货与付款
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}
		v1.POST("/financial-records/:id/payments", paymentHandler.Create)
		v1.GET("/financial-records/:id/payments", paymentHandler.List)
		v1.PUT("/payments/:id", paymentHandler.Update)
		v1.DELETE("/payments/:id", paymentHandler.Delete)

		// 银行贷款
		loans := v1.Group("/loans")
		{
			loans.POST("", loanHandler.Create)
			loans.GET("", loanHandler.List)
			loans.GET("/:id", loanHandler.Get)
			loans.PUT("/:id", loanHandler.Update)
		}
		installments := v1.Group("/installments")
		{
			installments.PUT("/:id/paid", loanHandler.SetPaid)
			installments.POST("/:id/toggle", loanHandler.Toggle)
			installments.PUT("/:id/charges", loanHandler.UpdateCharges)
		}

		v1.GET("/capital", capitalHandler.Get)
		v1.PUT("/capital", capitalHandler.Set)
		v1.GET("/capital/movements", capitalHandler.Movements)

		incomes := v1.Group("/incomes")
		{
			incomes.POST("", cashFlowHandler.CreateIncome)
			incomes.GET("", cashFlowHandler.ListIncomes)
			incomes.DELETE("/:id", cashFlowHandler.DeleteIncome)
		}
		homeExpenses := v1.Group("/home-expenses")
		{
			homeExpenses.POST("", cashFlowHandler.CreateHomeExpense)
			homeExpenses.GET("", cashFlowHandler.ListHomeExpenses)
			homeExpenses.DELETE("/:id", cashFlowHandler.DeleteHomeExpense)
		}
		contactExpenses := v1.Group("/contact-expenses")
		{
			contactExpenses.POST("", cashFlowHandler.CreateContactExpense)
			contactExpenses.GET("", cashFlowHandler.ListContactExpenses)
			contactExpenses.DELETE("/:id", cashFlowHandler.DeleteContactExpense)
		}

		// 报表（只读）
		reports := v1.Group("/reports")
		{
			reports.GET("/dashboard", reportHandler.Dashboard)
			reports.GET("/contacts", reportHandler.ContactBalances)
			reports.GET("/contacts/:id", reportHandler.ContactStatement)
			reports.GET("/bank-statement", reportHandler.BankStatement)
		}

		export := v1.Group("/export")
		{
			export.GET("/transactions", exportHandler.Transactions)
			export.GET("/bank-statement", exportHandler.BankStatement)
		}
	}

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
