package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

// fakeGroqClient lets each test script the model's behavior per call
// kind and count how often the model was hit.
type fakeGroqClient struct {
	mu sync.Mutex

	jsonFn   func(system, user string) (string, error)
	textFn   func(system, user string) (string, error)
	visionFn func(prompt, imageURL string) (string, error)

	jsonCalls   int
	textCalls   int
	visionCalls int
}

func (f *fakeGroqClient) GenerateJSON(ctx context.Context, system, user string, opts GenOptions) (string, error) {
	f.mu.Lock()
	f.jsonCalls++
	fn := f.jsonFn
	f.mu.Unlock()
	if fn == nil {
		return "", fmt.Errorf("jsonFn not scripted")
	}
	return fn(system, user)
}

func (f *fakeGroqClient) GenerateText(ctx context.Context, system, user string, opts GenOptions) (string, error) {
	f.mu.Lock()
	f.textCalls++
	fn := f.textFn
	f.mu.Unlock()
	if fn == nil {
		return "", fmt.Errorf("textFn not scripted")
	}
	return fn(system, user)
}

func (f *fakeGroqClient) AnalyzeImageJSON(ctx context.Context, prompt, imageURL string, opts GenOptions) (string, error) {
	f.mu.Lock()
	f.visionCalls++
	fn := f.visionFn
	f.mu.Unlock()
	if fn == nil {
		return "", fmt.Errorf("visionFn not scripted")
	}
	return fn(prompt, imageURL)
}

func (f *fakeGroqClient) calls() (json, text, vision int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jsonCalls, f.textCalls, f.visionCalls
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Floor{},
		&types.PDFFile{},
		&types.Room{},
		&types.RoomObject{},
		&types.FloorRoom{},
		&types.FloorRoomObject{},
		&types.PalaceGenerationRun{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
