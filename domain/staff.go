package domain

import "time"

type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleManager          Role = "manager"
	RoleInventoryManager Role = "inventory_manager"
	RoleOrderManager     Role = "order_manager"
	RoleSupport          Role = "support"
	RoleAccountant       Role = "accountant"
	RoleDeliveryPerson   Role = "delivery_person"
	RoleSeller           Role = "seller"
	RoleViewer           Role = "viewer"
	RoleCustomer         Role = "customer"
)

var AllRoles = []Role{
	RoleSuperAdmin,
	RoleManager,
	RoleInventoryManager,
	RoleOrderManager,
	RoleSupport,
	RoleAccountant,
	RoleDeliveryPerson,
	RoleSeller,
	RoleViewer,
	RoleCustomer,
}

func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions are the per-staff capability flags. They start from the role
// table and may be overridden individually.
type Permissions struct {
	CanManageProducts  bool `gorm:"column:can_manage_products" json:"can_manage_products"`
	CanManageOrders    bool `gorm:"column:can_manage_orders" json:"can_manage_orders"`
	CanManageInventory bool `gorm:"column:can_manage_inventory" json:"can_manage_inventory"`
	CanManageCustomers bool `gorm:"column:can_manage_customers" json:"can_manage_customers"`
	CanManageStaff     bool `gorm:"column:can_manage_staff" json:"can_manage_staff"`
	CanViewReports     bool `gorm:"column:can_view_reports" json:"can_view_reports"`
	CanManageSettings  bool `gorm:"column:can_manage_settings" json:"can_manage_settings"`
	CanManageFinance   bool `gorm:"column:can_manage_finance" json:"can_manage_finance"`
	CanManageSellers   bool `gorm:"column:can_manage_sellers" json:"can_manage_sellers"`
	CanViewAllOrders   bool `gorm:"column:can_view_all_orders" json:"can_view_all_orders"`
	CanViewOwnOrders   bool `gorm:"column:can_view_own_orders" json:"can_view_own_orders"`
	CanManageDelivery  bool `gorm:"column:can_manage_delivery" json:"can_manage_delivery"`
}

type Permission string

const (
	PermManageProducts  Permission = "manage_products"
	PermManageOrders    Permission = "manage_orders"
	PermManageInventory Permission = "manage_inventory"
	PermManageCustomers Permission = "manage_customers"
	PermManageStaff     Permission = "manage_staff"
	PermViewReports     Permission = "view_reports"
	PermManageSettings  Permission = "manage_settings"
	PermManageFinance   Permission = "manage_finance"
	PermManageSellers   Permission = "manage_sellers"
	PermViewAllOrders   Permission = "view_all_orders"
	PermViewOwnOrders   Permission = "view_own_orders"
	PermManageDelivery  Permission = "manage_delivery"
)

func (p Permissions) Has(perm Permission) bool {
	switch perm {
	case PermManageProducts:
		return p.CanManageProducts
	case PermManageOrders:
		return p.CanManageOrders
	case PermManageInventory:
		return p.CanManageInventory
	case PermManageCustomers:
		return p.CanManageCustomers
	case PermManageStaff:
		return p.CanManageStaff
	case PermViewReports:
		return p.CanViewReports
	case PermManageSettings:
		return p.CanManageSettings
	case PermManageFinance:
		return p.CanManageFinance
	case PermManageSellers:
		return p.CanManageSellers
	case PermViewAllOrders:
		return p.CanViewAllOrders
	case PermViewOwnOrders:
		return p.CanViewOwnOrders
	case PermManageDelivery:
		return p.CanManageDelivery
	}
	return false
}

var rolePermissions = map[Role]Permissions{
	RoleSuperAdmin: {
		CanManageProducts: true, CanManageOrders: true, CanManageInventory: true, CanManageCustomers: true,
		CanManageStaff: true, CanViewReports: true, CanManageSettings: true, CanManageFinance: true,
		CanManageSellers: true, CanViewAllOrders: true, CanViewOwnOrders: true, CanManageDelivery: true,
	},
	RoleManager: {
		CanManageProducts: true, CanManageOrders: true, CanManageInventory: true, CanManageCustomers: true,
		CanViewReports: true, CanManageSettings: true, CanManageFinance: true,
		CanViewAllOrders: true, CanViewOwnOrders: true, CanManageDelivery: true,
	},
	RoleInventoryManager: {
		CanManageProducts: true, CanManageInventory: true, CanViewReports: true,
	},
	RoleOrderManager: {
		CanManageOrders: true, CanManageCustomers: true, CanViewReports: true,
		CanViewAllOrders: true, CanViewOwnOrders: true, CanManageDelivery: true,
	},
	RoleSupport: {
		CanManageOrders: true, CanManageCustomers: true, CanViewAllOrders: true, CanViewOwnOrders: true,
	},
	RoleAccountant: {
		CanViewReports: true, CanManageFinance: true, CanViewAllOrders: true, CanViewOwnOrders: true,
	},
	RoleDeliveryPerson: {
		CanViewOwnOrders: true, CanManageDelivery: true,
	},
	RoleSeller: {
		CanManageProducts: true, CanManageInventory: true, CanViewOwnOrders: true,
	},
	RoleViewer: {
		CanViewReports: true, CanViewOwnOrders: true,
	},
	RoleCustomer: {
		CanViewOwnOrders: true,
	},
}

// RolePermissions returns the default flags for a role; unknown roles get none.
func RolePermissions(role Role) Permissions {
	return rolePermissions[role]
}

type Dashboard string

const (
	DashboardMain        Dashboard = "main"
	DashboardDirector    Dashboard = "director"
	DashboardWarehouse   Dashboard = "warehouse"
	DashboardFulfillment Dashboard = "fulfillment"
	DashboardReports     Dashboard = "reports"
)

var AllDashboards = []Dashboard{
	DashboardMain,
	DashboardDirector,
	DashboardWarehouse,
	DashboardFulfillment,
	DashboardReports,
}

var dashboardRoles = map[Dashboard][]Role{
	DashboardMain:        {RoleSuperAdmin, RoleManager},
	DashboardDirector:    {RoleSuperAdmin, RoleManager, RoleAccountant},
	DashboardWarehouse:   {RoleSuperAdmin, RoleManager, RoleInventoryManager},
	DashboardFulfillment: {RoleSuperAdmin, RoleManager, RoleOrderManager, RoleDeliveryPerson},
	DashboardReports:     {RoleSuperAdmin, RoleManager, RoleInventoryManager, RoleOrderManager, RoleAccountant, RoleViewer},
}

// RoleCanView reports whether a role may open a dashboard.
func RoleCanView(role Role, d Dashboard) bool {
	for _, r := range dashboardRoles[d] {
		if r == role {
			return true
		}
	}
	return false
}

type StaffProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Role         Role      `gorm:"column:role;type:varchar(20);not null" json:"role"`
	Department   string    `gorm:"column:department;type:varchar(100)" json:"department"`
	EmployeeID   string    `gorm:"column:employee_id;type:varchar(50);uniqueIndex" json:"employee_id"`
	Phone        string    `gorm:"column:phone;type:varchar(20)" json:"phone"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	OriginalRole Role      `gorm:"column:original_role;type:varchar(20)" json:"original_role,omitempty"`
	IsSwitched   bool      `gorm:"column:is_switched;not null" json:"is_switched"`
	Permissions  `gorm:"embedded"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (StaffProfile) TableName() string {
	return "staff_profiles"
}

// CanView gates dashboards on the active role.
func (s StaffProfile) CanView(d Dashboard) bool {
	return s.IsActive && RoleCanView(s.Role, d)
}

// VisibleDashboards lists the dashboards the profile may open.
func (s StaffProfile) VisibleDashboards() []Dashboard {
	visible := []Dashboard{}
	for _, d := range AllDashboards {
		if s.CanView(d) {
			visible = append(visible, d)
		}
	}
	return visible
}

func (s StaffProfile) IsSuperAdmin() bool {
	role := s.Role
	if s.IsSwitched && s.OriginalRole != "" {
		role = s.OriginalRole
	}
	return s.IsActive && role == RoleSuperAdmin
}
