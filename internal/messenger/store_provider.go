package messenger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatherbot-api/internal/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// storeProvider implements Provider and CursorStore against the local
// message store tables. The OS integration that fills inbound_messages and
// drains outbound_messages lives outside this process.
type storeProvider struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStoreProvider creates a message-store backed Provider
func NewStoreProvider(db *gorm.DB, logger *zap.Logger) *storeProvider {
	return &storeProvider{db: db, logger: logger}
}

// PollInbound returns the oldest unhandled inbound message above cursor
func (p *storeProvider) PollInbound(ctx context.Context, cursor int64) (*Inbound, error) {
	var msg Inbound
	err := p.db.WithContext(ctx).
		Where("id > ?", cursor).
		Order("id asc").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapPollError(err, cursor)
	}
	return &msg, nil
}

// SendOutbound records the reply in the outbound table for the OS transport
func (p *storeProvider) SendOutbound(ctx context.Context, userID common.UserID, text string) error {
	if userID == "" {
		return common.ValidationError{Field: "user_id", Message: "must not be empty"}
	}

	out := Outbound{
		UserID: userID,
		Text:   text,
		SentAt: time.Now(),
	}
	if err := p.db.WithContext(ctx).Create(&out).Error; err != nil {
		return DeliveryError{UserID: string(userID), Cause: err}
	}

	p.logger.Debug("Outbound message queued",
		zap.String("user_id", string(userID)),
		zap.Int("text_length", len(text)))
	return nil
}

// Load reads a persisted cursor position, defaulting to 0
func (p *storeProvider) Load(name string) (int64, error) {
	var c PollCursor
	err := p.db.Where("name = ?", name).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load cursor %q: %w", name, err)
	}
	return c.Position, nil
}

// Save upserts a cursor position
func (p *storeProvider) Save(name string, position int64) error {
	c := PollCursor{Name: name, Position: position}
	err := p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"position"}),
	}).Create(&c).Error
	if err != nil {
		return fmt.Errorf("failed to save cursor %q: %w", name, err)
	}
	return nil
}

// Counts returns (inbound, outbound) message totals for the dashboard
func (p *storeProvider) Counts() (int64, int64, error) {
	var in, out int64
	if err := p.db.Model(&Inbound{}).Count(&in).Error; err != nil {
		return 0, 0, err
	}
	if err := p.db.Model(&Outbound{}).Count(&out).Error; err != nil {
		return 0, 0, err
	}
	return in, out, nil
}

// RunMigrations creates or updates the message store tables
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&Inbound{}, &Outbound{}, &PollCursor{}); err != nil {
		return fmt.Errorf("failed to migrate message store: %w", err)
	}
	return nil
}
