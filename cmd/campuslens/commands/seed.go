package commands

import (
	"log"

	"github.com/spf13/cobra"

	"campuslens/internal/app"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the campus-resource vector collection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.New(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.SeedResources(cmd.Context()); err != nil {
			return err
		}
		log.Println("Campus resources seeded")
		return nil
	},
}
