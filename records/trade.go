package records

import "time"

// XbondTradeSource is the source record for one xbond trade print, produced
// by the object-store extractor's per-row mapper (spec §4.4, XbondCfetsDeal
// category). Unlike quotes, trades are not grouped: each CSV row becomes one
// source record.
type XbondTradeSource struct {
	BusinessDate  time.Time  `etl:"business_date"`
	ExchProductID string     `etl:"exch_product_id"`
	TradeID       string     `etl:"trade_id"`
	TradeSide     *int       `etl:"tradeSide"`
	TradePrice    *float64   `etl:"trade_price"`
	TradeYield    *float64   `etl:"trade_yield"`
	TradeVolume   *float64   `etl:"trade_volume"`
	TradeDate     string     `etl:"trade_date"` // formatted YYYY.MM.DD
	ReceiveTime   *time.Time `etl:"receive_time"`

	// CounterpartyCode is documented upstream as always empty; it is
	// intentionally never populated on the target (spec §9 design note).
	CounterpartyCode string `etl:"counterparty_code"`
}

func (s *XbondTradeSource) SourceType() string { return SourceTypeXbondTrade }

func (s *XbondTradeSource) Key() SourceKey {
	evt := s.BusinessDate
	if s.ReceiveTime != nil {
		evt = *s.ReceiveTime
	}
	return SourceKey{BusinessDate: s.BusinessDate, ProductID: s.ExchProductID, EventTime: evt}
}

func (s *XbondTradeSource) Validate() bool {
	return s.ExchProductID != "" && s.TradeID != "" && s.TradePrice != nil
}

// XbondTradeTarget is the column-ordered target record inserted into
// xbond_trade_stream_temp (spec §4.6).
//
// lastTradeSide is an explicit name-collision override: the source field is
// named "tradeSide" (carried over from the upstream feed's column header)
// but the target column is "last_trade_side". The transform engine's
// name-match pass excludes "tradeSide" once this override is registered
// (spec §4.5).
type XbondTradeTarget struct {
	BusinessDate  time.Time `etl:"business_date"`
	ExchProductID string    `etl:"exch_product_id"`
	TradeID       string    `etl:"trade_id"`
	LastTradeSide int       `etl:"last_trade_side"`
	TradePrice    float64   `etl:"trade_price"`
	TradeYield    float64   `etl:"trade_yield"`
	TradeVolume   float64   `etl:"trade_volume"`
	TradeDate     time.Time `etl:"trade_date"`
	ReceiveTime   time.Time `etl:"receive_time"`
}

// NewXbondTradeTarget constructs a target record with every numeric field at
// its sentinel value.
func NewXbondTradeTarget() *XbondTradeTarget {
	return &XbondTradeTarget{
		LastTradeSide: SentinelInt,
		TradePrice:    sentinelFloat(),
		TradeYield:    sentinelFloat(),
		TradeVolume:   sentinelFloat(),
	}
}

func (t *XbondTradeTarget) DataType() string           { return DataTypeXbondTrade }
func (t *XbondTradeTarget) ReceiveTimestamp() time.Time { return t.ReceiveTime }

func (t *XbondTradeTarget) Columns() []string {
	return []string{
		"business_date", "exch_product_id", "trade_id", "last_trade_side",
		"trade_price", "trade_yield", "trade_volume", "trade_date", "receive_time",
	}
}

func (t *XbondTradeTarget) Values() []interface{} {
	return []interface{}{
		t.BusinessDate, t.ExchProductID, t.TradeID, t.LastTradeSide,
		t.TradePrice, t.TradeYield, t.TradeVolume, t.TradeDate, t.ReceiveTime,
	}
}
