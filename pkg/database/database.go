package database

import (
	"fmt"

	"Lumen_Blog/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open 按driver打开数据库；TranslateError让唯一键冲突变成gorm.ErrDuplicatedKey
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{TranslateError: true})
}

// Migrate 没有表就建表，缺列补列，不会删除
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
