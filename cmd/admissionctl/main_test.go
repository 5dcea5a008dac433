package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ksys/admission-service/internal/config"
	"github.com/ksys/admission-service/internal/models"
)

// useTempDatabase points every command at one sqlite file. Each command
// closes its connection, so a file outlives them where :memory: would not.
func useTempDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "admission.db")
	previous := openDatabase
	openDatabase = func(cfg *config.Config) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(path), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
	}
	t.Cleanup(func() { openDatabase = previous })
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	grantSuper, exportOut, exportStatus, exportQuery = false, "candidates.xlsx", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGrantAdmin(t *testing.T) {
	useTempDatabase(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	_, err = run(t, "grant-admin", "helper")
	assert.ErrorContains(t, err, "no super admin exists")

	out, err := run(t, "grant-admin", "--super", "root")
	require.NoError(t, err)
	assert.Contains(t, out, "root is now super admin")

	_, err = run(t, "grant-admin", "--super", "other")
	assert.ErrorContains(t, err, "super admin already exists")

	out, err = run(t, "grant-admin", "helper")
	require.NoError(t, err)
	assert.Contains(t, out, "helper added to the admin roster")

	out, err = run(t, "grant-admin", "helper")
	require.NoError(t, err)
	assert.Contains(t, out, "helper is already an admin")
}

func TestExport(t *testing.T) {
	path := useTempDatabase(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)
	_, err = run(t, "grant-admin", "--super", "root")
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Candidate{
		AdmissionID: "2026000001",
		FullName:    "Asha Verma",
		FatherName:  "Ravi Verma",
		DateOfBirth: "1999-04-12",
		Mobile:      "9876543210",
		Address:     "12 Lake Road",
		Status:      models.CandidatePending,
	}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	target := filepath.Join(t.TempDir(), "roster.xlsx")
	out, err := run(t, "export", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, target)

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Admission ID", rows[0][0])
	assert.Equal(t, "2026000001", rows[1][0])
}

func TestExport_UnknownStatus(t *testing.T) {
	useTempDatabase(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	_, err = run(t, "export", "--status", "archived")
	assert.ErrorContains(t, err, "unknown status")
}
