package records

import "time"

// BondFutureQuoteSource is the source record for one bond-future quote tick
// row, mapped from a SQL result row by the DB extractor (spec §4.4, SQL
// extractor contract, category BondFutureQuote).
type BondFutureQuoteSource struct {
	BusinessDate  time.Time  `etl:"business_date"`
	ExchProductID string     `etl:"exch_product_id"`
	LastPrice     *float64   `etl:"last_price"`
	BidPrice      *float64   `etl:"bid_price"`
	AskPrice      *float64   `etl:"ask_price"`
	Volume        *int64     `etl:"volume"`
	OpenInterest  *int64     `etl:"open_interest"`
	ReceiveTime   *time.Time `etl:"receive_time"`
}

func (s *BondFutureQuoteSource) SourceType() string { return SourceTypeBondFutureQuote }

func (s *BondFutureQuoteSource) Key() SourceKey {
	evt := s.BusinessDate
	if s.ReceiveTime != nil {
		evt = *s.ReceiveTime
	}
	return SourceKey{BusinessDate: s.BusinessDate, ProductID: s.ExchProductID, EventTime: evt}
}

func (s *BondFutureQuoteSource) Validate() bool {
	return s.ExchProductID != "" && s.LastPrice != nil
}

// BondFutureQuoteTarget is the column-ordered target record inserted into
// fut_market_price_stream_temp (spec §4.6).
type BondFutureQuoteTarget struct {
	BusinessDate  time.Time `etl:"business_date"`
	ExchProductID string    `etl:"exch_product_id"`
	LastPrice     float64   `etl:"last_price"`
	BidPrice      float64   `etl:"bid_price"`
	AskPrice      float64   `etl:"ask_price"`
	Volume        int64     `etl:"volume"`
	OpenInterest  int64     `etl:"open_interest"`
	ReceiveTime   time.Time `etl:"receive_time"`
}

// NewBondFutureQuoteTarget constructs a target record with every numeric
// field at its sentinel value.
func NewBondFutureQuoteTarget() *BondFutureQuoteTarget {
	return &BondFutureQuoteTarget{
		LastPrice:    sentinelFloat(),
		BidPrice:     sentinelFloat(),
		AskPrice:     sentinelFloat(),
		Volume:       SentinelInt,
		OpenInterest: SentinelInt,
	}
}

func (t *BondFutureQuoteTarget) DataType() string           { return DataTypeBondFutureQuote }
func (t *BondFutureQuoteTarget) ReceiveTimestamp() time.Time { return t.ReceiveTime }

func (t *BondFutureQuoteTarget) Columns() []string {
	return []string{
		"business_date", "exch_product_id", "last_price", "bid_price",
		"ask_price", "volume", "open_interest", "receive_time",
	}
}

func (t *BondFutureQuoteTarget) Values() []interface{} {
	return []interface{}{
		t.BusinessDate, t.ExchProductID, t.LastPrice, t.BidPrice,
		t.AskPrice, t.Volume, t.OpenInterest, t.ReceiveTime,
	}
}
