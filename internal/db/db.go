package db

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lojf/kidstrack/internal/models"
)

var conn *gorm.DB

func Init(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.Parent{},
		&models.Child{},
		&models.ProgramSession{},
		&models.ParticipationRecord{},
		&models.BehavioralNote{},
	); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_records_session_status ON participation_records(session_id, status)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_records_parent         ON participation_records(parent_id)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_notes_parent_status    ON behavioral_notes(parent_id, status)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_notes_child_status     ON behavioral_notes(child_id, status)")

	log.Println("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}
