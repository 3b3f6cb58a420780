package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"techshop/business/category"
	"techshop/business/product"
	"techshop/business/staff"
	"techshop/domain"
	psqlRepo "techshop/internal/repository/postgres"
	"techshop/pkg/database"
	"techshop/pkg/logger"
	"techshop/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// cliActor tags activity rows written by the ops tool.
var cliActor = domain.Actor{IP: "techshopctl"}

type (
	categoryService interface {
		GetAllCategories(ctx context.Context) ([]domain.Category, error)
		CreateCategory(ctx context.Context, actor domain.Actor, category *domain.Category) (*domain.Category, error)
	}

	productService interface {
		GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
		CreateProduct(ctx context.Context, actor domain.Actor, product *domain.Product) (*domain.Product, error)
		AddVariant(ctx context.Context, actor domain.Actor, variant *domain.ProductVariant) (*domain.ProductVariant, error)
	}

	staffService interface {
		CreateStaff(ctx context.Context, actor domain.Actor, in staff.CreateStaffInput) (domain.StaffProfile, error)
	}

	userRepository interface {
		Create(ctx context.Context, user *domain.User) error
		FindByEmail(ctx context.Context, email string) (domain.User, error)
	}
)

type seeder struct {
	categories categoryService
	products   productService
	staff      staffService
	users      userRepository
}

func newSeeder(db *gorm.DB) *seeder {
	activityRepo := psqlRepo.NewActivityRepository(db)
	userRepo := psqlRepo.NewUserRepository(db)

	return &seeder{
		categories: category.NewCategoryService(psqlRepo.NewCategoryRepository(db), activityRepo),
		products:   product.NewProductService(psqlRepo.NewProductRepository(db), activityRepo),
		staff:      staff.NewStaffService(psqlRepo.NewStaffRepository(db), userRepo, activityRepo),
		users:      userRepo,
	}
}

type seedVariant struct {
	Suffix     string
	Attributes map[string]interface{}
	Adjustment string
	Stock      int
}

type seedProduct struct {
	SKU         string
	Name        string
	Description string
	Price       string
	Discount    string
	Stock       int
	Variants    []seedVariant
}

type seedCategory struct {
	Name        string
	Description string
	Products    []seedProduct
}

var catalog = []seedCategory{
	{
		Name:        "Laptops",
		Description: "Notebooks and ultrabooks",
		Products: []seedProduct{
			{
				SKU: "LAP-PRO14", Name: "ProBook 14", Description: "14 inch business laptop",
				Price: "1299.00", Discount: "10", Stock: 20,
				Variants: []seedVariant{
					{Suffix: "16GB", Attributes: map[string]interface{}{"memory": "16GB"}, Adjustment: "0", Stock: 12},
					{Suffix: "32GB", Attributes: map[string]interface{}{"memory": "32GB"}, Adjustment: "200.00", Stock: 8},
				},
			},
			{SKU: "LAP-AIR13", Name: "AirLite 13", Description: "Lightweight 13 inch ultrabook", Price: "999.00", Stock: 15},
		},
	},
	{
		Name:        "Phones",
		Description: "Smartphones",
		Products: []seedProduct{
			{
				SKU: "PHN-X12", Name: "Phone X12", Description: "6.1 inch OLED smartphone",
				Price: "799.00", Stock: 30,
				Variants: []seedVariant{
					{Suffix: "BLK", Attributes: map[string]interface{}{"color": "black"}, Adjustment: "0", Stock: 18},
					{Suffix: "SLV", Attributes: map[string]interface{}{"color": "silver"}, Adjustment: "0", Stock: 12},
				},
			},
		},
	},
	{
		Name:        "Accessories",
		Description: "Cables, chargers and peripherals",
		Products: []seedProduct{
			{SKU: "ACC-USBC1", Name: "USB-C Cable 1m", Price: "19.90", Stock: 200},
			{SKU: "ACC-CHG65", Name: "65W GaN Charger", Price: "49.00", Discount: "15", Stock: 4},
		},
	},
}

// Catalog creates the demo categories, products and variants. Rows that
// already exist are left untouched so the command can be rerun.
func (s *seeder) Catalog(ctx context.Context) (created int, err error) {
	existing, err := s.categories.GetAllCategories(ctx)
	if err != nil {
		return 0, err
	}

	categoryIDs := make(map[string]uint64, len(existing))
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}

	for _, sc := range catalog {
		id, ok := categoryIDs[sc.Name]
		if !ok {
			c, err := s.categories.CreateCategory(ctx, cliActor, &domain.Category{Name: sc.Name, Description: sc.Description})
			if err != nil {
				return created, fmt.Errorf("create category %s: %w", sc.Name, err)
			}
			id = c.ID
		}

		for _, sp := range sc.Products {
			ok, err := s.product(ctx, id, sp)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}

	return created, nil
}

func (s *seeder) product(ctx context.Context, categoryID uint64, sp seedProduct) (bool, error) {
	if _, err := s.products.GetProductBySKU(ctx, sp.SKU); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	discount := decimal.Zero
	if sp.Discount != "" {
		discount = decimal.RequireFromString(sp.Discount)
	}

	p, err := s.products.CreateProduct(ctx, cliActor, &domain.Product{
		SKU:                sp.SKU,
		Name:               sp.Name,
		Description:        sp.Description,
		CategoryID:         &categoryID,
		Price:              decimal.RequireFromString(sp.Price),
		DiscountPercentage: discount,
		StockQuantity:      sp.Stock,
		ReorderLevel:       5,
		IsAvailableOnline:  true,
	})
	if err != nil {
		return false, fmt.Errorf("create product %s: %w", sp.SKU, err)
	}

	for _, sv := range sp.Variants {
		_, err := s.products.AddVariant(ctx, cliActor, &domain.ProductVariant{
			ProductID:       p.ID,
			SKUSuffix:       sv.Suffix,
			Attributes:      sv.Attributes,
			PriceAdjustment: decimal.RequireFromString(sv.Adjustment),
			StockQuantity:   sv.Stock,
			IsActive:        true,
		})
		if err != nil {
			return false, fmt.Errorf("add variant %s-%s: %w", sp.SKU, sv.Suffix, err)
		}
	}

	return true, nil
}

// SuperAdmin makes sure a verified account with a super admin profile exists
// for email. An existing account keeps its password.
func (s *seeder) SuperAdmin(ctx context.Context, email, password string) (domain.StaffProfile, error) {
	email = strings.TrimSpace(email)

	if _, err := s.users.FindByEmail(ctx, email); errors.Is(err, domain.ErrNotFound) {
		if len(password) < 6 {
			return domain.StaffProfile{}, errors.New("admin password must be at least 6 characters")
		}

		hash, err := utils.HashPassword(password)
		if err != nil {
			return domain.StaffProfile{}, fmt.Errorf("hash password: %w", err)
		}

		err = s.users.Create(ctx, &domain.User{
			FullName:   "Super Admin",
			Email:      email,
			Password:   string(hash),
			IsVerified: true,
			Role:       domain.UserRoleCustomer,
		})
		if err != nil {
			return domain.StaffProfile{}, fmt.Errorf("create admin user: %w", err)
		}
	} else if err != nil {
		return domain.StaffProfile{}, err
	}

	profile, err := s.staff.CreateStaff(ctx, cliActor, staff.CreateStaffInput{
		Email:      email,
		Role:       domain.RoleSuperAdmin,
		Department: "Management",
	})
	if errors.Is(err, staff.ErrAlreadyStaff) {
		return domain.StaffProfile{}, nil
	}

	return profile, err
}

var seedFlags struct {
	adminEmail    string
	adminPassword string
	skipAdmin     bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed categories, products, variants and a super admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := database.Migrate(db); err != nil {
			return err
		}

		ctx := cmd.Context()
		s := newSeeder(db)

		created, err := s.Catalog(ctx)
		if err != nil {
			return err
		}
		logger.Info("catalog seeded", "products_created", created)

		if seedFlags.skipAdmin {
			return nil
		}

		profile, err := s.SuperAdmin(ctx, seedFlags.adminEmail, seedFlags.adminPassword)
		if err != nil {
			return err
		}
		if profile.ID != 0 {
			logger.Info("super admin created", "email", seedFlags.adminEmail, "employee_id", profile.EmployeeID)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedFlags.adminEmail, "admin-email", "admin@techshop.local", "Super admin login email")
	seedCmd.Flags().StringVar(&seedFlags.adminPassword, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "Super admin password (or SEED_ADMIN_PASSWORD env)")
	seedCmd.Flags().BoolVar(&seedFlags.skipAdmin, "skip-admin", false, "Only seed the catalog")
}
