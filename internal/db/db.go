package db

import (
	"log"
	"time"

	"github.com/suPer8Hu/insight-platform/internal/analysis"
	"github.com/suPer8Hu/insight-platform/internal/models"
	"github.com/suPer8Hu/insight-platform/internal/oplog"
	"github.com/suPer8Hu/insight-platform/internal/qa"
	"github.com/suPer8Hu/insight-platform/internal/report"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := gdb.AutoMigrate(
		&models.User{},
		&report.Report{},
		&qa.Turn{},
		&oplog.ChangeLog{},
		&oplog.AuditLog{},
		&analysis.DimensionResult{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	return gdb
}
