package config

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	model "taskhub.com/taskhub/internal/models"
)

func NewDatabase(dsn string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Project{},
		&model.TaskGroup{},
		&model.Label{},
		&model.User{},
		&model.Task{},
		&model.Attachment{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	return db
}
