//go:build !integration

package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusPending, OrderStatus("lost"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDashboardVisibility(t *testing.T) {
	tests := []struct {
		role      Role
		dashboard Dashboard
		want      bool
	}{
		{RoleSuperAdmin, DashboardWarehouse, true},
		{RoleManager, DashboardMain, true},
		{RoleInventoryManager, DashboardWarehouse, true},
		{RoleInventoryManager, DashboardFulfillment, false},
		{RoleOrderManager, DashboardWarehouse, false},
		{RoleDeliveryPerson, DashboardFulfillment, true},
		{RoleAccountant, DashboardDirector, true},
		{RoleViewer, DashboardReports, true},
		{RoleViewer, DashboardMain, false},
		{RoleSupport, DashboardReports, false},
		{RoleCustomer, DashboardReports, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.dashboard), func(t *testing.T) {
			assert.Equal(t, tt.want, RoleCanView(tt.role, tt.dashboard))
		})
	}
}

func TestInactiveStaffSeesNothing(t *testing.T) {
	s := StaffProfile{Role: RoleSuperAdmin, IsActive: false}
	assert.Empty(t, s.VisibleDashboards())

	s.IsActive = true
	assert.Len(t, s.VisibleDashboards(), len(AllDashboards))
}

func TestSwitchedSuperAdminKeepsIdentity(t *testing.T) {
	s := StaffProfile{Role: RoleViewer, OriginalRole: RoleSuperAdmin, IsSwitched: true, IsActive: true}
	assert.True(t, s.IsSuperAdmin())
	assert.False(t, s.CanView(DashboardMain))
}

func TestRolePermissions(t *testing.T) {
	p := RolePermissions(RoleInventoryManager)
	assert.True(t, p.Has(PermManageInventory))
	assert.True(t, p.Has(PermManageProducts))
	assert.False(t, p.Has(PermManageOrders))
	assert.False(t, p.Has(PermManageStaff))

	assert.Equal(t, Permissions{}, RolePermissions(Role("intern")))
	assert.True(t, RolePermissions(RoleSuperAdmin).Has(PermManageStaff))
}

func TestDiscountedPrice(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("199.99"), DiscountPercentage: decimal.NewFromInt(15)}
	assert.Equal(t, "169.99", p.DiscountedPrice().StringFixed(2))

	p.DiscountPercentage = decimal.Zero
	assert.Equal(t, "199.99", p.DiscountedPrice().StringFixed(2))
}

func TestVariantPriceAndSKU(t *testing.T) {
	p := Product{SKU: "TSHIRT", Price: decimal.NewFromInt(20), DiscountPercentage: decimal.NewFromInt(10)}
	v := ProductVariant{
		SKUSuffix:       "RED-M",
		PriceAdjustment: decimal.RequireFromString("2.50"),
		Attributes:      datatypes.JSONMap{"size": "M", "color": "Red"},
	}

	assert.Equal(t, "20.50", v.UnitPrice(p).StringFixed(2))
	assert.Equal(t, "TSHIRT-RED-M", v.SKU(p))
	assert.Equal(t, "color: Red, size: M", v.Describe())
}

func TestStockStatusFor(t *testing.T) {
	assert.Equal(t, StockStatusOutOfStock, StockStatusFor(0, 10))
	assert.Equal(t, StockStatusLowStock, StockStatusFor(10, 10))
	assert.Equal(t, StockStatusInStock, StockStatusFor(11, 10))
}

func TestRiskLevelForScore(t *testing.T) {
	assert.Equal(t, RiskNone, RiskLevelForScore(19))
	assert.Equal(t, RiskLow, RiskLevelForScore(20))
	assert.Equal(t, RiskMedium, RiskLevelForScore(55))
	assert.Equal(t, RiskHigh, RiskLevelForScore(75))
}

func TestSumSubtotals(t *testing.T) {
	items := []OrderItem{
		{Subtotal: decimal.RequireFromString("10.10")},
		{Subtotal: decimal.RequireFromString("0.20")},
	}
	assert.Equal(t, "10.30", SumSubtotals(items).StringFixed(2))
}
