package database

import (
	"fmt"
	"log"
	"time"

	"vizhaa-backend/config"
	"vizhaa-backend/logger"
	"vizhaa-backend/models/booking"
	"vizhaa-backend/models/document"
	"vizhaa-backend/models/event"
	logModel "vizhaa-backend/models/log"
	"vizhaa-backend/models/otp"
	"vizhaa-backend/models/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDB opens the PostgreSQL connection and brings the schema up to date.
func InitDB(cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), GormConfig(cfg.DBLogSQL))
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// GormConfig is shared by the server and the test helper.
func GormConfig(logSQL bool) *gorm.Config {
	lvl := gormLogger.Silent
	if logSQL {
		lvl = gormLogger.Info
	}
	return &gorm.Config{
		Logger: gormLogger.New(log.New(log.Writer(), "", log.LstdFlags), gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
	}
}

// Migrate runs auto migration, indexes and constraints.
func Migrate(db *gorm.DB) error {
	if err := autoMigrate(db); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(db); err != nil {
		logger.Error("Failed to create indexes", err)
		return err
	}

	if db.Dialector.Name() == "postgres" {
		createForeignKeyConstraints(db)
	}
	return nil
}

func autoMigrate(db *gorm.DB) error {
	// Stage 1: accounts and verification
	stage1Models := []interface{}{
		&user.User{},
		&otp.Session{},
	}
	// Stage 2: events and their children
	stage2Models := []interface{}{
		&event.Event{},
		&event.EventService{},
		&event.PaymentTransaction{},
		&booking.Booking{},
		&booking.BookingStatusEvent{},
	}
	// Stage 3: supporting records
	stage3Models := []interface{}{
		&document.Scan{},
		&logModel.RequestLog{},
	}

	for _, stage := range [][]interface{}{stage1Models, stage2Models, stage3Models} {
		for _, model := range stage {
			if err := db.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %T: %w", model, err)
			}
		}
	}
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_events_organizer_status", "CREATE INDEX IF NOT EXISTS idx_events_organizer_status ON events(organizer_id, status)"},
		{"idx_events_status_date", "CREATE INDEX IF NOT EXISTS idx_events_status_date ON events(status, event_date)"},
		{"idx_event_services_event_service", "CREATE INDEX IF NOT EXISTS idx_event_services_event_service ON event_services(event_id, service)"},
		{"idx_bookings_organizer_status", "CREATE INDEX IF NOT EXISTS idx_bookings_organizer_status ON bookings(organizer_id, status)"},
		{"idx_bookings_supplier_created", "CREATE INDEX IF NOT EXISTS idx_bookings_supplier_created ON bookings(supplier_id, created_at)"},
		{"idx_request_logs_created_at", "CREATE INDEX IF NOT EXISTS idx_request_logs_created_at ON request_logs(created_at)"},
	}
	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// createForeignKeyConstraints adds constraints gorm does not derive from the models.
func createForeignKeyConstraints(db *gorm.DB) {
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_bookings_supplier",
			sql: `ALTER TABLE bookings ADD CONSTRAINT fk_bookings_supplier
				  FOREIGN KEY (supplier_id) REFERENCES users(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_events_organizer",
			sql: `ALTER TABLE events ADD CONSTRAINT fk_events_organizer
				  FOREIGN KEY (organizer_id) REFERENCES users(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
	}

	for _, constraint := range constraints {
		var exists bool
		checkSQL := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE constraint_name = $1
			)
		`
		if err := db.Raw(checkSQL, constraint.name).Scan(&exists).Error; err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}
		if exists {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
			continue
		}
		if err := db.Exec(constraint.sql).Error; err != nil {
			logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
		} else {
			logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
		}
	}
}
