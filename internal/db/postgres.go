package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/types"
	"github.com/yungbote/mindpalace-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "mindpalace", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Floor{},
		&types.PDFFile{},
		&types.Room{},
		&types.RoomObject{},
		&types.FloorRoom{},
		&types.FloorRoomObject{},
		&types.PalaceGenerationRun{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	cascades := []struct {
		table, constraint, column, refTable string
	}{
		{"pdf_file", "fk_pdf_file_floor_id", "floor_id", "floor"},
		{"room_object", "fk_room_object_room_id", "room_id", "room"},
		{"floor_room", "fk_floor_room_floor_id", "floor_id", "floor"},
		{"floor_room", "fk_floor_room_room_id", "room_id", "room"},
		{"floor_room_object", "fk_floor_room_object_floor_id", "floor_id", "floor"},
		{"floor_room_object", "fk_floor_room_object_room_id", "room_id", "room"},
		{"floor_room_object", "fk_floor_room_object_room_object_id", "room_object_id", "room_object"},
	}
	for _, c := range cascades {
		stmt := fmt.Sprintf(`
			ALTER TABLE %q DROP CONSTRAINT IF EXISTS %q;
			ALTER TABLE %q
			ADD CONSTRAINT %q
			FOREIGN KEY (%q)
			REFERENCES %q("id")
			ON DELETE CASCADE
		`, c.table, c.constraint, c.table, c.constraint, c.column, c.refTable)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.constraint, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
