package records

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func TestXbondQuoteSourceValidateRequiresProductIDAndOneSidePopulated(t *testing.T) {
	assert.False(t, (&XbondQuoteSource{}).Validate())

	noSides := &XbondQuoteSource{ExchProductID: "X"}
	assert.False(t, noSides.Validate())

	bidOnly := &XbondQuoteSource{ExchProductID: "X", Bid0Price: floatPtr(99.5)}
	assert.True(t, bidOnly.Validate())

	offerOnly := &XbondQuoteSource{ExchProductID: "X", Offer0Price: floatPtr(100.1)}
	assert.True(t, offerOnly.Validate())
}

func TestXbondQuoteSourceKeyFallsBackToBusinessDateWithoutReceiveTime(t *testing.T) {
	businessDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	s := &XbondQuoteSource{BusinessDate: businessDate, ExchProductID: "X"}
	key := s.Key()
	assert.Equal(t, businessDate, key.EventTime)
	assert.Equal(t, "X", key.ProductID)

	receiveTime := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	s.ReceiveTime = timePtr(receiveTime)
	assert.Equal(t, receiveTime, s.Key().EventTime)
}

func TestNewXbondQuoteTargetInitializesEveryNumericFieldToSentinel(t *testing.T) {
	target := NewXbondQuoteTarget()
	assert.Equal(t, SentinelInt, target.SettleSpeed)
	assert.True(t, math.IsNaN(target.Bid0Price))
	assert.True(t, math.IsNaN(target.Offer5Volume))
	assert.Equal(t, SentinelInt, target.Bid3YieldType)
	assert.Equal(t, SentinelInt, target.Offer0YieldType)
}

func TestXbondQuoteTargetColumnsAndValuesHaveMatchingLength(t *testing.T) {
	target := NewXbondQuoteTarget()
	assert.Len(t, target.Values(), len(target.Columns()))
	assert.Equal(t, DataTypeXbondQuote, target.DataType())
}

func TestXbondTradeSourceValidateRequiresIDAndPrice(t *testing.T) {
	price := 98.75
	valid := &XbondTradeSource{ExchProductID: "X", TradeID: "T1", TradePrice: &price}
	assert.True(t, valid.Validate())

	assert.False(t, (&XbondTradeSource{ExchProductID: "X", TradeID: "T1"}).Validate())
	assert.False(t, (&XbondTradeSource{TradeID: "T1", TradePrice: &price}).Validate())
	assert.False(t, (&XbondTradeSource{ExchProductID: "X", TradePrice: &price}).Validate())
}

func TestXbondTradeSourceKeyUsesReceiveTimeWhenPresent(t *testing.T) {
	businessDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	s := &XbondTradeSource{BusinessDate: businessDate, ExchProductID: "X"}
	assert.Equal(t, businessDate, s.Key().EventTime)

	receiveTime := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	s.ReceiveTime = timePtr(receiveTime)
	assert.Equal(t, receiveTime, s.Key().EventTime)
}

func TestNewXbondTradeTargetInitializesSentinels(t *testing.T) {
	target := NewXbondTradeTarget()
	assert.Equal(t, SentinelInt, target.LastTradeSide)
	assert.True(t, math.IsNaN(target.TradePrice))
	assert.True(t, math.IsNaN(target.TradeYield))
	assert.True(t, math.IsNaN(target.TradeVolume))
}

func TestXbondTradeTargetColumnsAndValuesHaveMatchingLengthAndOrder(t *testing.T) {
	target := NewXbondTradeTarget()
	target.TradeID = "T1"
	require.Len(t, target.Values(), len(target.Columns()))
	assert.Equal(t, "trade_id", target.Columns()[2])
	assert.Equal(t, "T1", target.Values()[2])
	assert.Equal(t, DataTypeXbondTrade, target.DataType())
}

func TestBondFutureQuoteSourceValidateRequiresProductIDAndLastPrice(t *testing.T) {
	price := 101.5
	assert.True(t, (&BondFutureQuoteSource{ExchProductID: "X", LastPrice: &price}).Validate())
	assert.False(t, (&BondFutureQuoteSource{ExchProductID: "X"}).Validate())
	assert.False(t, (&BondFutureQuoteSource{LastPrice: &price}).Validate())
}

func TestNewBondFutureQuoteTargetInitializesSentinels(t *testing.T) {
	target := NewBondFutureQuoteTarget()
	assert.True(t, math.IsNaN(target.LastPrice))
	assert.True(t, math.IsNaN(target.BidPrice))
	assert.True(t, math.IsNaN(target.AskPrice))
	assert.Equal(t, int64(SentinelInt), target.Volume)
	assert.Equal(t, int64(SentinelInt), target.OpenInterest)
}

func TestBondFutureQuoteTargetColumnsAndValuesHaveMatchingLength(t *testing.T) {
	target := NewBondFutureQuoteTarget()
	assert.Len(t, target.Values(), len(target.Columns()))
	assert.Equal(t, DataTypeBondFutureQuote, target.DataType())
}

func TestReceiveTimestampReflectsTheStoredReceiveTime(t *testing.T) {
	receiveTime := time.Date(2026, 1, 15, 9, 45, 0, 0, time.UTC)

	quote := NewXbondQuoteTarget()
	quote.ReceiveTime = receiveTime
	assert.Equal(t, receiveTime, quote.ReceiveTimestamp())

	trade := NewXbondTradeTarget()
	trade.ReceiveTime = receiveTime
	assert.Equal(t, receiveTime, trade.ReceiveTimestamp())

	future := NewBondFutureQuoteTarget()
	future.ReceiveTime = receiveTime
	assert.Equal(t, receiveTime, future.ReceiveTimestamp())
}
