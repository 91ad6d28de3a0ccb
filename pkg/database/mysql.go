package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"qu-assist-go/internal/model"
	"qu-assist-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 数据库连接并迁移文档表。
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := DB.AutoMigrate(&model.Document{}); err != nil {
		log.Fatal("failed to migrate documents table", err)
	}

	log.Info("MySQL database connected successfully")
}
