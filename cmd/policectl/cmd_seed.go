package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"police_flow_app_go/db"
	"police_flow_app_go/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var seedFlags struct {
	file string
}

// seedFile is the layout of a users seed file:
//
//	users:
//	  - name: Chief Rahimi
//	    email: chief@police.local
//	    password: change-me-please
//	    roles: [Police Chief]
type seedFile struct {
	Users []services.NewUserInput `yaml:"users"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create users and their roles from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		seed, err := loadSeedFile(seedFlags.file)
		if err != nil {
			return err
		}
		if err := openDatabase(); err != nil {
			return err
		}
		created, skipped, err := seedUsers(db.DB, seed.Users)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users (%d already present)\n", created, skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFlags.file, "file", "f", "", "YAML seed file (required)")
	_ = seedCmd.MarkFlagRequired("file")
}

func loadSeedFile(path string) (*seedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return parseSeed(f)
}

func parseSeed(r io.Reader) (*seedFile, error) {
	var seed seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// seedUsers creates every user whose email is not taken yet
func seedUsers(database *gorm.DB, users []services.NewUserInput) (created, skipped int, err error) {
	for _, input := range users {
		user, err := services.CreateUserWithRoles(database, input)
		if errors.Is(err, services.ErrEmailTaken) {
			skipped++
			continue
		}
		if err != nil {
			return created, skipped, fmt.Errorf("seed %s: %w", input.Email, err)
		}
		zap.S().Infow("Seeded user", "user_id", user.ID, "email", user.Email, "roles", input.Roles)
		created++
	}
	return created, skipped, nil
}
