package domain

import "github.com/shopspring/decimal"

type RevenueWindow struct {
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int64           `json:"order_count"`
}

type StatusCount struct {
	Status OrderStatus     `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type MainDashboard struct {
	RevenueToday    RevenueWindow `json:"revenue_today"`
	Revenue7Days    RevenueWindow `json:"revenue_7_days"`
	Revenue30Days   RevenueWindow `json:"revenue_30_days"`
	OrdersByStatus  []StatusCount `json:"orders_by_status"`
	ProductCount    int64         `json:"product_count"`
	CustomerCount   int64         `json:"customer_count"`
	OpenReviewCount int64         `json:"open_review_count"`
}

type DirectorDashboard struct {
	Today             RevenueWindow   `json:"today"`
	MonthToDate       RevenueWindow   `json:"month_to_date"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	LowStockCount     int64           `json:"low_stock_count"`
}

type StockItem struct {
	ProductID     uint64      `json:"product_id"`
	SKU           string      `json:"sku"`
	Name          string      `json:"name"`
	StockQuantity int         `json:"stock_quantity"`
	ReorderLevel  int         `json:"reorder_level"`
	Status        StockStatus `json:"status"`
}

type WarehouseDashboard struct {
	InStockCount    int64               `json:"in_stock_count"`
	LowStockCount   int64               `json:"low_stock_count"`
	OutOfStockCount int64               `json:"out_of_stock_count"`
	LowStock        []StockItem         `json:"low_stock"`
	OutOfStock      []StockItem         `json:"out_of_stock"`
	RecentMovements []InventoryMovement `json:"recent_movements"`
}

type FulfillmentQueue struct {
	Status OrderStatus `json:"status"`
	Count  int64       `json:"count"`
	Orders []WebOrder  `json:"orders"`
}

type FulfillmentDashboard struct {
	Queues []FulfillmentQueue `json:"queues"`
}

type ProductSales struct {
	ProductID   uint64          `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type ReportsDashboard struct {
	SalesByStatus []StatusCount  `json:"sales_by_status"`
	TopProducts   []ProductSales `json:"top_products"`
}
