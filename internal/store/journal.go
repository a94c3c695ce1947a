package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	storemodel "fadebot/internal/store/model"
	"fadebot/internal/trader"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// EventRecord is the journal-facing form of a decision event.
type EventRecord struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Symbol    string         `json:"symbol"`
	Payload   map[string]any `json:"payload"`
	CreatedTS int64          `json:"created_ts"`
}

// Journal 是 sqlite 追加式决策流水，只服务于观测接口；周期状态仍以 JSON
// 文件为准，流水写入失败不影响扫描循环。
type Journal struct {
	db *gorm.DB
}

// OpenJournal opens (or creates) the sqlite journal at path.
func OpenJournal(path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal: path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&storemodel.DecisionEventModel{}, &storemodel.ClosedTradeModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// single writer (the cycle loop) plus concurrent HTTP reads
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AppendEvent journals one decision event. Assigns a uuid when the record
// has none.
func (j *Journal) AppendEvent(ctx context.Context, evt EventRecord) error {
	if j == nil || j.db == nil {
		return nil
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.CreatedTS == 0 {
		evt.CreatedTS = time.Now().Unix()
	}
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return err
	}
	m := storemodel.DecisionEventModel{
		EventID:   evt.ID,
		Type:      strings.TrimSpace(evt.Type),
		Symbol:    strings.ToUpper(strings.TrimSpace(evt.Symbol)),
		Payload:   datatypes.JSON(payload),
		CreatedTS: evt.CreatedTS,
	}
	return j.db.WithContext(ctx).Create(&m).Error
}

// ListEvents returns the newest events first.
func (j *Journal) ListEvents(ctx context.Context, limit int) ([]EventRecord, error) {
	if j == nil || j.db == nil {
		return nil, fmt.Errorf("journal not initialized")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var models []storemodel.DecisionEventModel
	if err := j.db.WithContext(ctx).
		Order("created_ts DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]EventRecord, 0, len(models))
	for _, m := range models {
		rec := EventRecord{
			ID:        m.EventID,
			Type:      m.Type,
			Symbol:    m.Symbol,
			CreatedTS: m.CreatedTS,
		}
		if len(m.Payload) > 0 {
			_ = json.Unmarshal(m.Payload, &rec.Payload)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ArchiveTrade upserts a closed trade into the archive. Open trades are
// ignored.
func (j *Journal) ArchiveTrade(ctx context.Context, tr *trader.Trade) error {
	if j == nil || j.db == nil || tr == nil {
		return nil
	}
	pnl, ok := tr.PnL()
	if !ok {
		return nil
	}
	m := storemodel.ClosedTradeModel{
		TradeID:           tr.ID,
		Symbol:            tr.Symbol,
		Side:              tr.Side,
		NotionalUSDT:      tr.NotionalUSDT,
		Qty:               tr.Qty,
		Entry:             tr.Entry,
		TP:                tr.TP,
		SL:                tr.SL,
		LocalHigh:         tr.LocalHigh,
		FundingRateAtOpen: tr.FundingRateAtOpen,
		OpenTS:            tr.OpenTS,
		CloseTS:           tr.CloseTS,
		CloseReason:       string(tr.CloseReason),
		ClosePrice:        tr.ClosePrice,
		PnL:               pnl,
	}
	return j.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trade_id"}},
			DoNothing: true,
		}).
		Create(&m).Error
}

// ListClosedTrades returns archived trades, most recently closed first.
func (j *Journal) ListClosedTrades(ctx context.Context, limit int) ([]storemodel.ClosedTradeModel, error) {
	if j == nil || j.db == nil {
		return nil, fmt.Errorf("journal not initialized")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var models []storemodel.ClosedTradeModel
	if err := j.db.WithContext(ctx).
		Order("close_ts DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}
