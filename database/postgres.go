package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/portfolio-blog-backend/models"
)

// gormModels lists every table owned by the relational backend.
var gormModels = []interface{}{
	&models.User{},
	&models.BlogPost{},
	&models.BlogLike{},
	&models.Comment{},
}

// OpenPostgres connects to the primary, registers read replicas through
// dbresolver and migrates the schema.
func OpenPostgres(dsn string, replicas []string, zlog zerolog.Logger) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, replica := range replicas {
			dialectors = append(dialectors, postgres.Open(replica))
		}
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetConnMaxIdleTime(5 * time.Minute).
			SetMaxOpenConns(20))
		if err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
		zlog.Info().Int("replicas", len(replicas)).Msg("read replicas registered")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test postgres connection: %w", err)
	}

	if err := db.AutoMigrate(gormModels...); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	for table, extra := range ColumnMismatchReport(db) {
		zlog.Warn().Str("table", table).Strs("columns", extra).Msg("columns not mapped by any model field")
	}

	return db, nil
}

// NewGorm builds a Database backed by the given GORM connection.
func NewGorm(db *gorm.DB) Database {
	return New(
		NewUserRepo(db),
		NewBlogPostRepo(db),
		NewCommentRepo(db),
		func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	)
}
