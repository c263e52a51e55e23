package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/fulfillment/internal/infrastructure/config"
	"github.com/xiebiao/fulfillment/pkg/logger"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := gormlogger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logger.L().Infow("数据库连接成功", "host", cfg.Database.Host)

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ProductModel{},
		&InventoryModel{},
		&InventoryHistoryModel{},
		&OrderModel{},
		&OrderItemModel{},
		&SaleModel{},
		&SnapshotModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. SKU有唯一索引,防止重复
// 3. 库存不在本表，由inventories表单独管理
type ProductModel struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"index:idx_search;size:200;not null;comment:商品名称"`
	Description string         `gorm:"type:text;comment:商品描述"`
	SKU         string         `gorm:"uniqueIndex;size:64;not null;comment:SKU编码"`
	Price       int64          `gorm:"not null;comment:售价(分)"`
	CostPrice   int64          `gorm:"not null;default:0;comment:成本价(分)"`
	Avatar      string         `gorm:"size:500;comment:商品图URL"`
	Status      string         `gorm:"index;size:16;not null;default:DRAFT;comment:状态(ACTIVE/INACTIVE/DRAFT)"`
	CategoryID  uint           `gorm:"index;comment:类目ID(0表示未分类)"`
	CreatedBy   uint           `gorm:"index;not null;comment:创建人用户ID"`
	CreatedAt   time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// InventoryModel GORM库存模型
// 每个商品一行(product_id唯一索引)，行锁扣减的目标表
type InventoryModel struct {
	ID              uint      `gorm:"primaryKey"`
	ProductID       uint      `gorm:"uniqueIndex;not null;comment:商品ID"`
	Quantity        int       `gorm:"not null;default:0;comment:在库数量"`
	LastRestockDate time.Time `gorm:"comment:最近补货时间"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (InventoryModel) TableName() string {
	return "inventories"
}

// InventoryHistoryModel GORM库存流水模型
// 只增不改：每次库存变更恰好插入一条
type InventoryHistoryModel struct {
	ID               uint      `gorm:"primaryKey"`
	InventoryID      uint      `gorm:"index;not null;comment:库存记录ID"`
	PreviousQuantity int       `gorm:"not null;comment:变更前数量"`
	NewQuantity      int       `gorm:"not null;comment:变更后数量"`
	ChangeReason     string    `gorm:"size:100;not null;comment:变更原因"`
	ChangedBy        uint      `gorm:"index;comment:操作人用户ID"`
	CreatedAt        time.Time `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (InventoryHistoryModel) TableName() string {
	return "inventory_history"
}

// OrderModel GORM订单模型
// 设计说明:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)，订单号冲突靠它兜底
// 3. 四个金额字段各自落库，下游快照直接累加
type OrderModel struct {
	ID              uint             `gorm:"primaryKey"`
	OrderNo         string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	ChannelID       uint             `gorm:"index;not null;comment:销售渠道ID"`
	OrderDate       time.Time        `gorm:"index;not null;comment:下单时间"`
	TotalAmount     int64            `gorm:"not null;comment:商品总额(分)"`
	TaxAmount       int64            `gorm:"not null;default:0;comment:税费(分)"`
	ShippingAmount  int64            `gorm:"not null;default:0;comment:运费(分)"`
	DiscountAmount  int64            `gorm:"not null;default:0;comment:折扣(分)"`
	Status          string           `gorm:"index;size:16;not null;default:PENDING;comment:订单状态"`
	CustomerName    string           `gorm:"size:100;comment:客户姓名"`
	CustomerEmail   string           `gorm:"size:100;comment:客户邮箱"`
	ShippingAddress string           `gorm:"size:500;comment:收货地址"`
	BillingAddress  string           `gorm:"size:500;comment:账单地址"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt       time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// UnitPrice/Subtotal记录下单时的价格快照
type OrderItemModel struct {
	ID        uint  `gorm:"primaryKey"`
	OrderID   uint  `gorm:"index;not null;comment:订单ID"`
	ProductID uint  `gorm:"index;not null;comment:商品ID"`
	Quantity  int   `gorm:"not null;comment:购买数量"`
	UnitPrice int64 `gorm:"not null;comment:下单时单价(分)"`
	Subtotal  int64 `gorm:"not null;comment:小计(分)"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// SaleModel GORM销售记录模型
// 粒度是"售出一件"：由销售事件消费者逐条落库
type SaleModel struct {
	ID          uint      `gorm:"primaryKey"`
	OrderID     uint      `gorm:"index;not null;comment:订单ID"`
	OrderItemID uint      `gorm:"index;not null;comment:订单明细ID"`
	ProductID   uint      `gorm:"index;not null;comment:商品ID"`
	CategoryID  uint      `gorm:"index;comment:类目ID"`
	ChannelID   uint      `gorm:"index;comment:渠道ID"`
	SaleDate    time.Time `gorm:"index;not null;comment:销售时间"`
	Amount      int64     `gorm:"not null;comment:单件金额(分)"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (SaleModel) TableName() string {
	return "sales"
}

// SnapshotModel GORM销售快照模型
// 聚合器按固定批量写入，只增不改
type SnapshotModel struct {
	ID             uint      `gorm:"primaryKey"`
	SnapshotDate   time.Time `gorm:"index;not null;comment:快照时间"`
	TotalSales     int       `gorm:"not null;comment:批内订单数"`
	TotalRevenue   int64     `gorm:"not null;comment:总营收(分)"`
	AverageSales   int64     `gorm:"not null;comment:平均销量"`
	AverageRevenue int64     `gorm:"not null;comment:平均营收(分)"`
	TotalQuantity  int       `gorm:"not null;comment:总件数"`
	TotalProducts  int       `gorm:"not null;comment:去重商品数"`
	TotalTax       int64     `gorm:"not null;comment:总税费(分)"`
	TotalShipping  int64     `gorm:"not null;comment:总运费(分)"`
	TotalDiscount  int64     `gorm:"not null;comment:总折扣(分)"`
	Interval       string    `gorm:"size:32;not null;comment:聚合窗口标识"`
	CreatedAt      time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (SnapshotModel) TableName() string {
	return "sales_snapshots"
}
