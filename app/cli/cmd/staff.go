package cmd

import (
	"fmt"

	"techshop/business/staff"
	"techshop/domain"

	"github.com/spf13/cobra"
)

var createStaffFlags struct {
	email      string
	role       string
	department string
	phone      string
}

var createStaffCmd = &cobra.Command{
	Use:   "create-staff",
	Short: "Give a registered user a staff profile",
	Long: `Promote an existing account to staff with the given role. The permission
flags start from the role defaults and can be changed later from the admin API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		profile, err := newSeeder(db).staff.CreateStaff(cmd.Context(), cliActor, staff.CreateStaffInput{
			Email:      createStaffFlags.email,
			Role:       domain.Role(createStaffFlags.role),
			Department: createStaffFlags.department,
			Phone:      createStaffFlags.phone,
		})
		if err != nil {
			return fmt.Errorf("create staff %s: %w", createStaffFlags.email, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with employee id %s\n", createStaffFlags.email, profile.Role, profile.EmployeeID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createStaffCmd)

	createStaffCmd.Flags().StringVar(&createStaffFlags.email, "email", "", "Email of the registered user")
	createStaffCmd.Flags().StringVar(&createStaffFlags.role, "role", "", "Staff role, e.g. manager or order_manager")
	createStaffCmd.Flags().StringVar(&createStaffFlags.department, "department", "", "Department name")
	createStaffCmd.Flags().StringVar(&createStaffFlags.phone, "phone", "", "Contact phone")
	_ = createStaffCmd.MarkFlagRequired("email")
	_ = createStaffCmd.MarkFlagRequired("role")
}
