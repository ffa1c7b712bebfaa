package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/volunteer-board/backend/internal/config"
	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository/memory"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository/mongorepo"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health(ctx context.Context) map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db   *gorm.DB
	name string
}

// Open connects the backend named by cfg.StoreDriver and returns its repositories.
func Open(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongorepo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return client.Repositories(), nil
	case config.DriverMemory:
		log.Println("⚠️  Using in-memory store; data is lost on restart")
		return memory.New().Repositories(), nil
	default:
		svc, err := New(cfg.PostgresDSN(), cfg.DBName)
		if err != nil {
			return nil, err
		}
		return Repositories(svc), nil
	}
}

// Repositories wraps a gorm service as a repository.Store.
func Repositories(svc Service) *repository.Store {
	db := svc.GetDB()
	return &repository.Store{
		Driver:   config.DriverPostgres,
		Posts:    repository.NewPostRepository(db),
		Requests: repository.NewRequestRepository(db),
		Health:   svc,
	}
}

// New opens a gorm connection to dsn, migrates the schema and configures the pool.
func New(dsn, name string) (Service, error) {
	// Configure GORM logger
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Repositories open their own transactions where two writes must land together.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Println("✅ Database connected successfully")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("✅ Database migrations completed")

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &service{db: db, name: name}, nil
}

// Migrate creates the volunteer and volunteer_requests tables and their indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Post{}, &models.Request{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := make(map[string]string)

	// Get underlying SQL DB
	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}

	// Ping the database
	err = sqlDB.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	// Database is up
	stats["status"] = "up"
	stats["message"] = "It's healthy"

	// Get database stats
	dbStats := sqlDB.Stats()
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	log.Printf("Disconnected from database: %s", s.name)
	return sqlDB.Close()
}
