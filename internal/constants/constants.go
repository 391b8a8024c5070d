package constants

// 多态归属类型常量
const (
	OwnerTypeCart  = "cart"
	OwnerTypeOrder = "order"
)

// 配送方式常量
const (
	ShippingDriverLocalPickup = "local-pickup"
)

// 默认币种
const (
	DefaultCurrency = "USD"
)

// 队列常量
const (
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
	TaskClearChunks  = "media:clear_chunks"
)

// 运行模式常量
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)
