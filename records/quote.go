// Package records: xbond quote source/target shapes.
package records

import (
	"math"
	"time"
)

// XbondQuoteSource is the grouped source record for one message offset of an
// xbond quote feed, emitted by the object-store extractor's Convert phase
// (spec §4.4.1). Depth-level fields are pointers so an absent level (no row
// at that side/level for this message offset) is distinguishable from a
// present-but-zero value; the transform engine's box/unbox conversion rule
// turns a nil pointer into the target's sentinel.
type XbondQuoteSource struct {
	BusinessDate    time.Time `etl:"business_date"`
	ExchProductID   string    `etl:"exch_product_id"`
	SettleSpeed     *int      `etl:"settle_speed"`
	ProductType     string    `etl:"product_type"`
	Exchange        string    `etl:"exchange"`
	FeedSource      string    `etl:"source"`
	DepthLevel      string    `etl:"level"`
	Status          string    `etl:"status"`
	ReceiveTime     *time.Time `etl:"receive_time"`
	MessageOffset   string    `etl:"-"`

	Bid0Price *float64 `etl:"bid_0_price"`
	Bid0Yield *float64 `etl:"bid_0_yield"`
	Bid0YieldType *int     `etl:"bid_0_yield_type"`
	Bid0Volume *float64 `etl:"bid_0_volume"`
	Bid1Price *float64 `etl:"bid_1_price"`
	Bid1Yield *float64 `etl:"bid_1_yield"`
	Bid1YieldType *int     `etl:"bid_1_yield_type"`
	Bid1Volume *float64 `etl:"bid_1_tradable_volume"`
	Bid2Price *float64 `etl:"bid_2_price"`
	Bid2Yield *float64 `etl:"bid_2_yield"`
	Bid2YieldType *int     `etl:"bid_2_yield_type"`
	Bid2Volume *float64 `etl:"bid_2_tradable_volume"`
	Bid3Price *float64 `etl:"bid_3_price"`
	Bid3Yield *float64 `etl:"bid_3_yield"`
	Bid3YieldType *int     `etl:"bid_3_yield_type"`
	Bid3Volume *float64 `etl:"bid_3_tradable_volume"`
	Bid4Price *float64 `etl:"bid_4_price"`
	Bid4Yield *float64 `etl:"bid_4_yield"`
	Bid4YieldType *int     `etl:"bid_4_yield_type"`
	Bid4Volume *float64 `etl:"bid_4_tradable_volume"`
	Bid5Price *float64 `etl:"bid_5_price"`
	Bid5Yield *float64 `etl:"bid_5_yield"`
	Bid5YieldType *int     `etl:"bid_5_yield_type"`
	Bid5Volume *float64 `etl:"bid_5_tradable_volume"`
	Offer0Price *float64 `etl:"offer_0_price"`
	Offer0Yield *float64 `etl:"offer_0_yield"`
	Offer0YieldType *int     `etl:"offer_0_yield_type"`
	Offer0Volume *float64 `etl:"offer_0_volume"`
	Offer1Price *float64 `etl:"offer_1_price"`
	Offer1Yield *float64 `etl:"offer_1_yield"`
	Offer1YieldType *int     `etl:"offer_1_yield_type"`
	Offer1Volume *float64 `etl:"offer_1_tradable_volume"`
	Offer2Price *float64 `etl:"offer_2_price"`
	Offer2Yield *float64 `etl:"offer_2_yield"`
	Offer2YieldType *int     `etl:"offer_2_yield_type"`
	Offer2Volume *float64 `etl:"offer_2_tradable_volume"`
	Offer3Price *float64 `etl:"offer_3_price"`
	Offer3Yield *float64 `etl:"offer_3_yield"`
	Offer3YieldType *int     `etl:"offer_3_yield_type"`
	Offer3Volume *float64 `etl:"offer_3_tradable_volume"`
	Offer4Price *float64 `etl:"offer_4_price"`
	Offer4Yield *float64 `etl:"offer_4_yield"`
	Offer4YieldType *int     `etl:"offer_4_yield_type"`
	Offer4Volume *float64 `etl:"offer_4_tradable_volume"`
	Offer5Price *float64 `etl:"offer_5_price"`
	Offer5Yield *float64 `etl:"offer_5_yield"`
	Offer5YieldType *int     `etl:"offer_5_yield_type"`
	Offer5Volume *float64 `etl:"offer_5_tradable_volume"`
}

func (s *XbondQuoteSource) SourceType() string { return SourceTypeXbondQuote }

func (s *XbondQuoteSource) Key() SourceKey {
	evt := s.BusinessDate
	if s.ReceiveTime != nil {
		evt = *s.ReceiveTime
	}
	return SourceKey{BusinessDate: s.BusinessDate, ProductID: s.ExchProductID, EventTime: evt}
}

// Validate reports whether the grouped quote carries enough data to be
// loaded: a product id and a level-1 (slot 0) bid or offer price. Deeper
// levels alone do not make the record valid.
func (s *XbondQuoteSource) Validate() bool {
	if s.ExchProductID == "" {
		return false
	}
	return s.Bid0Price != nil || s.Offer0Price != nil
}

// XbondQuoteTarget is the column-ordered target record inserted into
// xbond_quote_stream_temp (spec §4.6). Column order is a stable property of
// the type and must match the target table definition exactly.
type XbondQuoteTarget struct {
	BusinessDate  time.Time `etl:"business_date"`
	ExchProductID string    `etl:"exch_product_id"`
	SettleSpeed   int       `etl:"settle_speed"`
	ProductType   string    `etl:"product_type"`
	Exchange      string    `etl:"exchange"`
	FeedSource    string    `etl:"source"`
	DepthLevel    string    `etl:"level"`
	Status        string    `etl:"status"`
	ReceiveTime   time.Time `etl:"receive_time"`

	Bid0Price float64 `etl:"bid_0_price"`
	Bid0Yield float64 `etl:"bid_0_yield"`
	Bid0YieldType int     `etl:"bid_0_yield_type"`
	Bid0Volume float64 `etl:"bid_0_volume"`
	Bid1Price float64 `etl:"bid_1_price"`
	Bid1Yield float64 `etl:"bid_1_yield"`
	Bid1YieldType int     `etl:"bid_1_yield_type"`
	Bid1Volume float64 `etl:"bid_1_tradable_volume"`
	Bid2Price float64 `etl:"bid_2_price"`
	Bid2Yield float64 `etl:"bid_2_yield"`
	Bid2YieldType int     `etl:"bid_2_yield_type"`
	Bid2Volume float64 `etl:"bid_2_tradable_volume"`
	Bid3Price float64 `etl:"bid_3_price"`
	Bid3Yield float64 `etl:"bid_3_yield"`
	Bid3YieldType int     `etl:"bid_3_yield_type"`
	Bid3Volume float64 `etl:"bid_3_tradable_volume"`
	Bid4Price float64 `etl:"bid_4_price"`
	Bid4Yield float64 `etl:"bid_4_yield"`
	Bid4YieldType int     `etl:"bid_4_yield_type"`
	Bid4Volume float64 `etl:"bid_4_tradable_volume"`
	Bid5Price float64 `etl:"bid_5_price"`
	Bid5Yield float64 `etl:"bid_5_yield"`
	Bid5YieldType int     `etl:"bid_5_yield_type"`
	Bid5Volume float64 `etl:"bid_5_tradable_volume"`
	Offer0Price float64 `etl:"offer_0_price"`
	Offer0Yield float64 `etl:"offer_0_yield"`
	Offer0YieldType int     `etl:"offer_0_yield_type"`
	Offer0Volume float64 `etl:"offer_0_volume"`
	Offer1Price float64 `etl:"offer_1_price"`
	Offer1Yield float64 `etl:"offer_1_yield"`
	Offer1YieldType int     `etl:"offer_1_yield_type"`
	Offer1Volume float64 `etl:"offer_1_tradable_volume"`
	Offer2Price float64 `etl:"offer_2_price"`
	Offer2Yield float64 `etl:"offer_2_yield"`
	Offer2YieldType int     `etl:"offer_2_yield_type"`
	Offer2Volume float64 `etl:"offer_2_tradable_volume"`
	Offer3Price float64 `etl:"offer_3_price"`
	Offer3Yield float64 `etl:"offer_3_yield"`
	Offer3YieldType int     `etl:"offer_3_yield_type"`
	Offer3Volume float64 `etl:"offer_3_tradable_volume"`
	Offer4Price float64 `etl:"offer_4_price"`
	Offer4Yield float64 `etl:"offer_4_yield"`
	Offer4YieldType int     `etl:"offer_4_yield_type"`
	Offer4Volume float64 `etl:"offer_4_tradable_volume"`
	Offer5Price float64 `etl:"offer_5_price"`
	Offer5Yield float64 `etl:"offer_5_yield"`
	Offer5YieldType int     `etl:"offer_5_yield_type"`
	Offer5Volume float64 `etl:"offer_5_tradable_volume"`
}

// NewXbondQuoteTarget constructs a target record with every numeric field at
// its sentinel value, per the sentinel-initialization rule in spec §4.5.
func NewXbondQuoteTarget() *XbondQuoteTarget {
	return &XbondQuoteTarget{
		SettleSpeed: SentinelInt,
		Bid0Price:     math.NaN(),
		Bid0Yield:     math.NaN(),
		Bid0YieldType: SentinelInt,
		Bid0Volume:    math.NaN(),
		Bid1Price:     math.NaN(),
		Bid1Yield:     math.NaN(),
		Bid1YieldType: SentinelInt,
		Bid1Volume:    math.NaN(),
		Bid2Price:     math.NaN(),
		Bid2Yield:     math.NaN(),
		Bid2YieldType: SentinelInt,
		Bid2Volume:    math.NaN(),
		Bid3Price:     math.NaN(),
		Bid3Yield:     math.NaN(),
		Bid3YieldType: SentinelInt,
		Bid3Volume:    math.NaN(),
		Bid4Price:     math.NaN(),
		Bid4Yield:     math.NaN(),
		Bid4YieldType: SentinelInt,
		Bid4Volume:    math.NaN(),
		Bid5Price:     math.NaN(),
		Bid5Yield:     math.NaN(),
		Bid5YieldType: SentinelInt,
		Bid5Volume:    math.NaN(),
		Offer0Price:     math.NaN(),
		Offer0Yield:     math.NaN(),
		Offer0YieldType: SentinelInt,
		Offer0Volume:    math.NaN(),
		Offer1Price:     math.NaN(),
		Offer1Yield:     math.NaN(),
		Offer1YieldType: SentinelInt,
		Offer1Volume:    math.NaN(),
		Offer2Price:     math.NaN(),
		Offer2Yield:     math.NaN(),
		Offer2YieldType: SentinelInt,
		Offer2Volume:    math.NaN(),
		Offer3Price:     math.NaN(),
		Offer3Yield:     math.NaN(),
		Offer3YieldType: SentinelInt,
		Offer3Volume:    math.NaN(),
		Offer4Price:     math.NaN(),
		Offer4Yield:     math.NaN(),
		Offer4YieldType: SentinelInt,
		Offer4Volume:    math.NaN(),
		Offer5Price:     math.NaN(),
		Offer5Yield:     math.NaN(),
		Offer5YieldType: SentinelInt,
		Offer5Volume:    math.NaN(),
	}
}

func (t *XbondQuoteTarget) DataType() string            { return DataTypeXbondQuote }
func (t *XbondQuoteTarget) ReceiveTimestamp() time.Time  { return t.ReceiveTime }

func (t *XbondQuoteTarget) Columns() []string {
	return []string{
		"business_date", "exch_product_id", "settle_speed", "product_type",
		"exchange", "source", "level", "status", "receive_time",
		"bid_0_price",
		"bid_0_yield",
		"bid_0_yield_type",
		"bid_0_volume",
		"bid_1_price",
		"bid_1_yield",
		"bid_1_yield_type",
		"bid_1_tradable_volume",
		"bid_2_price",
		"bid_2_yield",
		"bid_2_yield_type",
		"bid_2_tradable_volume",
		"bid_3_price",
		"bid_3_yield",
		"bid_3_yield_type",
		"bid_3_tradable_volume",
		"bid_4_price",
		"bid_4_yield",
		"bid_4_yield_type",
		"bid_4_tradable_volume",
		"bid_5_price",
		"bid_5_yield",
		"bid_5_yield_type",
		"bid_5_tradable_volume",
		"offer_0_price",
		"offer_0_yield",
		"offer_0_yield_type",
		"offer_0_volume",
		"offer_1_price",
		"offer_1_yield",
		"offer_1_yield_type",
		"offer_1_tradable_volume",
		"offer_2_price",
		"offer_2_yield",
		"offer_2_yield_type",
		"offer_2_tradable_volume",
		"offer_3_price",
		"offer_3_yield",
		"offer_3_yield_type",
		"offer_3_tradable_volume",
		"offer_4_price",
		"offer_4_yield",
		"offer_4_yield_type",
		"offer_4_tradable_volume",
		"offer_5_price",
		"offer_5_yield",
		"offer_5_yield_type",
		"offer_5_tradable_volume",
	}
}

func (t *XbondQuoteTarget) Values() []interface{} {
	return []interface{}{
		t.BusinessDate, t.ExchProductID, t.SettleSpeed, t.ProductType,
		t.Exchange, t.FeedSource, t.DepthLevel, t.Status, t.ReceiveTime,
		t.Bid0Price,
		t.Bid0Yield,
		t.Bid0YieldType,
		t.Bid0Volume,
		t.Bid1Price,
		t.Bid1Yield,
		t.Bid1YieldType,
		t.Bid1Volume,
		t.Bid2Price,
		t.Bid2Yield,
		t.Bid2YieldType,
		t.Bid2Volume,
		t.Bid3Price,
		t.Bid3Yield,
		t.Bid3YieldType,
		t.Bid3Volume,
		t.Bid4Price,
		t.Bid4Yield,
		t.Bid4YieldType,
		t.Bid4Volume,
		t.Bid5Price,
		t.Bid5Yield,
		t.Bid5YieldType,
		t.Bid5Volume,
		t.Offer0Price,
		t.Offer0Yield,
		t.Offer0YieldType,
		t.Offer0Volume,
		t.Offer1Price,
		t.Offer1Yield,
		t.Offer1YieldType,
		t.Offer1Volume,
		t.Offer2Price,
		t.Offer2Yield,
		t.Offer2YieldType,
		t.Offer2Volume,
		t.Offer3Price,
		t.Offer3Yield,
		t.Offer3YieldType,
		t.Offer3Volume,
		t.Offer4Price,
		t.Offer4Yield,
		t.Offer4YieldType,
		t.Offer4Volume,
		t.Offer5Price,
		t.Offer5Yield,
		t.Offer5YieldType,
		t.Offer5Volume,
	}
}

