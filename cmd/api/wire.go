//go:build wireinject
// +build wireinject

// wire.go 依赖注入定义
// 运行 `wire` 命令生成wire_gen.go；main.go中保留了一份手动组装的
// 等价代码，两边的依赖关系保持一致。
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

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
	"github.com/xiebiao/fulfillment/pkg/mq"
)

// infrastructureSet 基础设施层Provider
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redisinfra.NewClient,
	providePublisher,
	provideJWTManager,
	provideSessionStore,
	provideBus,
	provideSnapshotQueue,
)

// repositorySet 仓储Provider（构造函数直接返回领域接口）
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewProductRepository,
	mysql.NewInventoryRepository,
	mysql.NewOrderRepository,
	mysql.NewSalesRepository,
	mysql.NewTxManager,
	wire.Bind(new(apporder.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(appinventory.Transactor), new(*mysql.TxManager)),
)

// domainSet 领域服务Provider
var domainSet = wire.NewSet(
	user.NewService,
	providePricingPolicy,
)

// eventSet 事件管道Provider（HTTP侧只用到Emitter）
var eventSet = wire.NewSet(
	provideEmitter,
	wire.Bind(new(apporder.EventEmitter), new(*events.Emitter)),
)

// applicationSet 应用层Provider
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	apporder.NewPlaceOrderUseCase,
	apporder.NewGetOrderUseCase,
	appproduct.NewCreateProductUseCase,
	appproduct.NewGetProductUseCase,
	appinventory.NewManageInventoryUseCase,
	appsales.NewQuerySalesUseCase,
)

// middlewareSet 中间件Provider
var middlewareSet = wire.NewSet(
	middleware.NewAuthMiddleware,
)

// handlerSet 接口层Provider
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewOrderHandler,
	handler.NewProductHandler,
	provideInventoryHandler,
	handler.NewSalesHandler,
	provideAlertHandler,
)

// provideJWTManager 从配置提取JWT参数
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideSessionStore(client *redis.Client) *redisinfra.SessionStore {
	return redisinfra.NewSessionStore(client)
}

func provideBus(client *redis.Client) *redisinfra.Bus {
	return redisinfra.NewBus(client)
}

func provideSnapshotQueue(cfg *config.Config, client *redis.Client) *redisinfra.Queue {
	return redisinfra.NewQueue(client, cfg.Pipeline.SnapshotQueue)
}

func providePublisher(cfg *config.Config) (*mq.Publisher, error) {
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
}

func provideEmitter(cfg *config.Config, publisher *mq.Publisher) *events.Emitter {
	return events.NewEmitter(publisher, cfg.MQ.OrderTopic, cfg.MQ.SaleTopic)
}

func providePricingPolicy(cfg *config.Config) order.PricingPolicy {
	return order.FixedPolicy{
		TaxAmount:       cfg.Pipeline.TaxAmount,
		ShippingPerLine: cfg.Pipeline.ShippingPerLine,
	}
}

func provideInventoryHandler(uc *appinventory.ManageInventoryUseCase, cfg *config.Config) *handler.InventoryHandler {
	return handler.NewInventoryHandler(uc, cfg.Pipeline.LowStockThreshold)
}

func provideAlertHandler(bus *redisinfra.Bus, cfg *config.Config) *handler.AlertHandler {
	return handler.NewAlertHandler(bus, cfg.Pipeline.IncomingOrderChannel, cfg.Pipeline.LowStockChannel)
}

// provideGinEngine 组装gin引擎并注册路由
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	orderHandler *handler.OrderHandler,
	productHandler *handler.ProductHandler,
	inventoryHandler *handler.InventoryHandler,
	salesHandler *handler.SalesHandler,
	alertHandler *handler.AlertHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	registerRoutes(r, userHandler, orderHandler, productHandler, inventoryHandler, salesHandler, alertHandler, authMiddleware)
	return r
}

// InitializeApp 初始化HTTP应用
// 后台workers（消费者、聚合器）的生命周期与信号处理在main中组装
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		eventSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
