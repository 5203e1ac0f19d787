package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agentduel/agentduel/agent"
	"github.com/agentduel/agentduel/conversation"
	"github.com/agentduel/agentduel/types"
)

// AgentRecord is one stored agent configuration.
type AgentRecord struct {
	ID        string `gorm:"primaryKey"`
	Document  string `gorm:"type:text"`
	Position  int
	UpdatedAt time.Time
}

func (AgentRecord) TableName() string { return "agents" }

// ConversationRecord stores one conversation tree as a JSON document.
// Trees are small and always loaded whole, so a document per
// conversation beats a row per node.
type ConversationRecord struct {
	ID        string `gorm:"primaryKey"`
	Document  string `gorm:"type:text"`
	Position  int
	UpdatedAt time.Time
}

func (ConversationRecord) TableName() string { return "conversations" }

// Store persists agent configurations and conversation snapshots to
// SQLite. It is an optional layer: the in-memory stores are the source
// of truth and the database is written on demand.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at path and migrates the schema.
// ":memory:" is accepted for tests.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&AgentRecord{}, &ConversationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With(zap.String("component", "persistence")),
	}, nil
}

// Save writes the current agents and conversation snapshots in one
// transaction, replacing whatever was stored before.
func (s *Store) Save(agents []*types.AgentConfig, snapshots []*conversation.Snapshot) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&AgentRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&ConversationRecord{}).Error; err != nil {
			return err
		}

		now := time.Now()
		for i, a := range agents {
			doc, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("failed to marshal agent %s: %w", a.ID, err)
			}
			record := AgentRecord{ID: a.ID, Document: string(doc), Position: i, UpdatedAt: now}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		for i, snap := range snapshots {
			doc, err := json.Marshal(snap)
			if err != nil {
				return fmt.Errorf("failed to marshal conversation %s: %w", snap.ID, err)
			}
			record := ConversationRecord{ID: snap.ID, Document: string(doc), Position: i, UpdatedAt: now}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Load restores agents and conversations into the given stores in their
// original creation order.
func (s *Store) Load(registry *agent.Registry, store *conversation.Store) error {
	var agentRecords []AgentRecord
	if err := s.db.Order("position").Find(&agentRecords).Error; err != nil {
		return fmt.Errorf("failed to load agents: %w", err)
	}

	agents := make([]*types.AgentConfig, 0, len(agentRecords))
	for _, record := range agentRecords {
		var a types.AgentConfig
		if err := json.Unmarshal([]byte(record.Document), &a); err != nil {
			return fmt.Errorf("failed to decode agent %s: %w", record.ID, err)
		}
		agents = append(agents, &a)
	}
	registry.Restore(agents)

	var convRecords []ConversationRecord
	if err := s.db.Order("position").Find(&convRecords).Error; err != nil {
		return fmt.Errorf("failed to load conversations: %w", err)
	}

	snapshots := make([]*conversation.Snapshot, 0, len(convRecords))
	for _, record := range convRecords {
		var snap conversation.Snapshot
		if err := json.Unmarshal([]byte(record.Document), &snap); err != nil {
			return fmt.Errorf("failed to decode conversation %s: %w", record.ID, err)
		}
		snapshots = append(snapshots, &snap)
	}
	store.Restore(snapshots)

	s.logger.Info("state loaded",
		zap.Int("agents", len(agents)),
		zap.Int("conversations", len(snapshots)))
	return nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
