package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"police_flow_app_go/db"
	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

const seedYAML = `
users:
  - name: Chief Rahimi
    email: Chief@Police.Local
    password: change-me-please
    roles: [Police Chief]
  - name: Judge Hosseini
    email: judge@police.local
    password: change-me-please
    national_id: "0011223344"
    roles: [Judge, Basic User]
`

func TestParseSeed(t *testing.T) {
	seed, err := parseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Users, 2)
	assert.Equal(t, "Judge Hosseini", seed.Users[1].Name)
	assert.Equal(t, "0011223344", seed.Users[1].NationalID)
	assert.Equal(t, []string{models.RoleJudge, models.RoleBasicUser}, seed.Users[1].Roles)

	_, err = parseSeed(strings.NewReader("users:\n  - name: X\n    rank: general\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestSeedUsersSkipsExisting(t *testing.T) {
	database, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(models.All()...))
	sqlDB, _ := database.DB()
	t.Cleanup(func() { sqlDB.Close() })

	seed, err := parseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	created, skipped, err := seedUsers(database, seed.Users)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Zero(t, skipped)

	created, skipped, err = seedUsers(database, seed.Users)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 2, skipped)

	var judge models.User
	require.NoError(t, database.Preload("Roles").First(&judge, "email = ?", "judge@police.local").Error)
	assert.Len(t, judge.Roles, 2)
}

func TestReadPasswordFromPipe(t *testing.T) {
	var out bytes.Buffer
	pw, err := readPassword(&out, strings.NewReader("s3cret-value\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret-value", pw)
	assert.Empty(t, out.String())
}

func TestPrintMostWanted(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	err := printMostWanted(cmd, []services.MostWantedEntry{
		{Name: "Farhad", NationalID: "0012345678", Status: models.SuspectStatusUnderSevereSurveillance,
			Rank: services.SuspectRank{MaxDays: 45}, Ranking: 180, RewardAmount: 180 * services.RewardUnit},
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "RANKING")
	assert.Contains(t, lines[1], "Farhad")
	assert.Contains(t, lines[1], "180")
}
