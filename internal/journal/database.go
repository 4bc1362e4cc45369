package journal

import (
	"errors"

	"github.com/fxjournal/journal-api/internal/types"
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateTrade(trade *types.Trade) error {
	return d.db.Create(trade).Error
}

func (d *Database) GetTrade(tradeID string) (*types.Trade, error) {
	var trade types.Trade
	if err := d.db.Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trade, nil
}

// ListTrades returns every trade, newest first by entry date.
func (d *Database) ListTrades() ([]types.Trade, error) {
	var trades []types.Trade
	if err := d.db.Order("date DESC").Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

func (d *Database) UpdateTrade(trade *types.Trade) error {
	return d.db.Save(trade).Error
}

// DeleteTrade removes a trade by its ID. The second return reports whether a
// record was actually removed.
func (d *Database) DeleteTrade(tradeID string) (bool, error) {
	res := d.db.Where("trade_id = ?", tradeID).Delete(&types.Trade{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
