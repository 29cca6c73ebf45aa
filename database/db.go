package database

import (
	"fmt"

	"github.com/BinLe1988/mood-tracker/configs"
	"github.com/BinLe1988/mood-tracker/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector 根据配置选择数据库驱动
func Dialector(dbConfig configs.Database) (gorm.Dialector, error) {
	switch dbConfig.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.DBName)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			dbConfig.Host, dbConfig.Port, dbConfig.User, dbConfig.Password, dbConfig.DBName)
		return postgres.Open(dsn), nil
	case "sqlite":
		path := dbConfig.Path
		if path == "" {
			path = "mood.db"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", dbConfig.Driver)
	}
}

// Initialize 初始化数据库连接并迁移表结构
func Initialize(dbConfig configs.Database) (*gorm.DB, error) {
	dialector, err := Dialector(dbConfig)
	if err != nil {
		return nil, err
	}
	return Open(dialector)
}

// Open 打开连接并自动迁移
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// 自动迁移数据库表
	if err := db.AutoMigrate(
		&models.User{},
		&models.MoodEntry{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// OpenInMemory 打开独立的内存sqlite数据库
func OpenInMemory(name string) (*gorm.DB, error) {
	return Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
}
