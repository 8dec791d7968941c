package database

import (
	"fmt"

	"companion-counselling-be/internal/model"

	"gorm.io/gorm"
)

// ActiveRoomIndex guarantees at most one active room per participant.
const ActiveRoomIndex = "uniq_video_sessions_active_participant"

func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Consultant{},
		&model.Booking{},
		&model.VideoSession{},
		&model.Notification{},
		&model.Announcement{},
		&model.NotificationSnapshot{},
	}
}

// Migrate creates the schema. Both PostgreSQL and SQLite understand the
// partial index syntax used here.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON video_sessions (participant_id) WHERE status = 'active'",
		ActiveRoomIndex,
	)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create %s: %w", ActiveRoomIndex, err)
	}
	return nil
}
