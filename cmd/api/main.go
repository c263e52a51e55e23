package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appinventory "github.com/xiebiao/fulfillment/internal/application/inventory"
	apporder "github.com/xiebiao/fulfillment/internal/application/order"
	appproduct "github.com/xiebiao/fulfillment/internal/application/product"
	appsales "github.com/xiebiao/fulfillment/internal/application/sales"
	appuser "github.com/xiebiao/fulfillment/internal/application/user"
	"github.com/xiebiao/fulfillment/internal/domain/order"
	"github.com/xiebiao/fulfillment/internal/domain/user"
	"github.com/xiebiao/fulfillment/internal/events"
	"github.com/xiebiao/fulfillment/internal/infrastructure/config"
	"github.com/xiebiao/fulfillment/internal/infrastructure/persistence/mysql"
	redisinfra "github.com/xiebiao/fulfillment/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/fulfillment/internal/interface/http/handler"
	"github.com/xiebiao/fulfillment/internal/interface/http/middleware"
	"github.com/xiebiao/fulfillment/pkg/jwt"
	"github.com/xiebiao/fulfillment/pkg/logger"
	"github.com/xiebiao/fulfillment/pkg/metrics"
	"github.com/xiebiao/fulfillment/pkg/mq"
	"github.com/xiebiao/fulfillment/pkg/response"
	"github.com/xiebiao/fulfillment/pkg/tracing"
)

// main 主程序入口
// 单进程：一个HTTP服务 + 三个后台worker（订单消费者、销售消费者、
// 快照聚合器）。基础设施（MySQL/Redis/broker）任一连接失败直接退出，
// 不允许以"管道断一截"的降级状态运行。
func main() {
	// 1. 配置与日志
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if _, err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Sync()

	// 根context：收到SIGINT/SIGTERM即取消，workers据此协作退出
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 追踪（未配置collector时为no-op）
	shutdownTracing, err := tracing.Init(rootCtx, "fulfillment", cfg.Tracing.Endpoint)
	if err != nil {
		logger.L().Warnw("追踪初始化失败，降级为no-op", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer shutdownTracing(context.Background())

	// 3. 基础设施连接（失败即fatal）
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redisinfra.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		log.Fatalf("初始化消息发布者失败: %v", err)
	}
	defer publisher.Close()

	orderSource, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.OrderGroup, []string{cfg.MQ.OrderTopic})
	if err != nil {
		log.Fatalf("初始化订单消费者失败: %v", err)
	}
	defer orderSource.Close()

	saleSource, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.SaleGroup, []string{cfg.MQ.SaleTopic})
	if err != nil {
		log.Fatalf("初始化销售消费者失败: %v", err)
	}
	defer saleSource.Close()

	// 4. 依赖注入（手动组装；wire.go中有等价的Provider定义）
	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	inventoryRepo := mysql.NewInventoryRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	salesRepo := mysql.NewSalesRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redisinfra.NewSessionStore(redisClient)
	bus := redisinfra.NewBus(redisClient)
	snapshotQueue := redisinfra.NewQueue(redisClient, cfg.Pipeline.SnapshotQueue)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)

	// 领域层
	userService := user.NewService(userRepo)
	pricing := order.FixedPolicy{
		TaxAmount:       cfg.Pipeline.TaxAmount,
		ShippingPerLine: cfg.Pipeline.ShippingPerLine,
	}

	// 事件管道
	emitter := events.NewEmitter(publisher, cfg.MQ.OrderTopic, cfg.MQ.SaleTopic)
	orderConsumer := events.NewOrderConsumer(
		orderSource, bus, snapshotQueue, inventoryRepo,
		cfg.Pipeline.IncomingOrderChannel, cfg.Pipeline.LowStockChannel,
		cfg.Pipeline.LowStockThreshold,
	)
	saleConsumer := events.NewSaleConsumer(saleSource, salesRepo)
	aggregator := events.NewAggregator(
		snapshotQueue, salesRepo,
		cfg.Pipeline.SnapshotBatchSize, cfg.Pipeline.SnapshotPollInterval,
	)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	placeOrderUseCase := apporder.NewPlaceOrderUseCase(orderRepo, productRepo, inventoryRepo, txManager, emitter, pricing)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo)
	createProductUseCase := appproduct.NewCreateProductUseCase(productRepo)
	getProductUseCase := appproduct.NewGetProductUseCase(productRepo)
	manageInventoryUseCase := appinventory.NewManageInventoryUseCase(inventoryRepo, productRepo, txManager)
	querySalesUseCase := appsales.NewQuerySalesUseCase(salesRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase)
	orderHandler := handler.NewOrderHandler(placeOrderUseCase, getOrderUseCase)
	productHandler := handler.NewProductHandler(createProductUseCase, getProductUseCase)
	inventoryHandler := handler.NewInventoryHandler(manageInventoryUseCase, cfg.Pipeline.LowStockThreshold)
	salesHandler := handler.NewSalesHandler(querySalesUseCase)
	alertHandler := handler.NewAlertHandler(bus, cfg.Pipeline.IncomingOrderChannel, cfg.Pipeline.LowStockChannel)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 5. 启动后台workers
	var wg sync.WaitGroup
	runWorker := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(rootCtx); err != nil {
				logger.L().Errorw("worker异常退出", "worker", name, "error", err)
			}
		}()
	}
	runWorker("order-consumer", orderConsumer.Run)
	runWorker("sale-consumer", saleConsumer.Run)
	runWorker("aggregator", aggregator.Run)

	// 6. HTTP服务
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	registerRoutes(r, userHandler, orderHandler, productHandler, inventoryHandler, salesHandler, alertHandler, authMiddleware)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout保持0：SSE长连接不能被写超时掐断
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.L().Infow("服务启动", "addr", server.Addr, "mode", cfg.Server.Mode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 7. 优雅停机：先停HTTP，再等workers退出
	<-rootCtx.Done()
	logger.L().Infow("收到退出信号，开始停机")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Errorw("HTTP服务停机失败", "error", err)
	}

	wg.Wait()
	logger.L().Infow("所有worker已退出，服务停止")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	orderHandler *handler.OrderHandler,
	productHandler *handler.ProductHandler,
	inventoryHandler *handler.InventoryHandler,
	salesHandler *handler.SalesHandler,
	alertHandler *handler.AlertHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查与运维端点
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
		}

		// 商品模块
		products := v1.Group("/products")
		{
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", authMiddleware.RequireAuth(), productHandler.CreateProduct)
		}

		// 库存模块（需要登录，流水要记操作人）
		inv := v1.Group("/inventory")
		inv.Use(authMiddleware.RequireAuth())
		{
			inv.POST("", inventoryHandler.Restock)
			inv.GET("/low-stock", inventoryHandler.ListLowStock)
		}

		// 订单模块（需要登录）
		orders := v1.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.POST("", orderHandler.PlaceOrder)
			orders.GET("/:id", orderHandler.GetOrder)
		}

		// 销售模块（需要登录）
		sales := v1.Group("/sales")
		sales.Use(authMiddleware.RequireAuth())
		{
			sales.GET("", salesHandler.ListSales)
			sales.GET("/snapshots", salesHandler.ListSnapshots)
		}

		// 告警SSE流（面向内部监控页，公开）
		alerts := v1.Group("/alerts")
		{
			alerts.GET("/low-stock", alertHandler.StreamLowStock)
			alerts.GET("/incoming-order", alertHandler.StreamIncomingOrders)
		}
	}
}
