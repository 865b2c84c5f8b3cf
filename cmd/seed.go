package cmd

import (
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "taskhub.com/taskhub/internal/configs"
	model "taskhub.com/taskhub/internal/models"
)

// seedCmd bootstraps a fresh database with a demo project, task groups,
// labels, and one user per role, so the API is usable out of the box.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo reference data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.NewDatabase(cfg.DatabaseDSN)

		project := model.Project{ID: uuid.NewString(), Name: "Demo Project"}
		if err := database.Create(&project).Error; err != nil {
			return err
		}

		groups := []model.TaskGroup{
			{ID: uuid.NewString(), ProjectID: project.ID, Name: "Backlog", Order: 0},
			{ID: uuid.NewString(), ProjectID: project.ID, Name: "In Progress", Order: 1},
			{ID: uuid.NewString(), ProjectID: project.ID, Name: "Done", Order: 2},
		}
		if err := database.Create(&groups).Error; err != nil {
			return err
		}

		labels := []model.Label{
			{ID: uuid.NewString(), Name: "bug", Color: "red"},
			{ID: uuid.NewString(), Name: "feature", Color: "blue"},
			{ID: uuid.NewString(), Name: "chore", Color: "gray"},
		}
		if err := database.Create(&labels).Error; err != nil {
			return err
		}

		users := []model.User{
			{ID: uuid.NewString(), Name: "Ada Admin", Email: "admin@example.com", Role: model.RoleAdmin},
			{ID: uuid.NewString(), Name: "Mia Manager", Email: "manager@example.com", Role: model.RoleManager},
			{ID: uuid.NewString(), Name: "Max Member", Email: "member@example.com", Role: model.RoleMember},
			{ID: uuid.NewString(), Name: "Cleo Client", Email: "client@example.com", Role: model.RoleClient},
		}
		if err := database.Create(&users).Error; err != nil {
			return err
		}

		log.Printf("seeded project %s with %d groups, %d labels, %d users",
			project.ID, len(groups), len(labels), len(users))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
