package transform

import (
	"github.com/xbond-analytics/market-etl/records"
)

// Transformer is bound to one sourceType and knows how to build both a
// Mapper and fresh sentinel-initialized target records for it (spec §3,
// "Transformer capability").
type Transformer struct {
	SourceType string
	TargetType string
	mapper     *Mapper
	newTarget  func() interface{}
}

// Transform maps a single source record through this transformer's Mapper.
// A non-nil error means source violated the Mapper's static binding
// invariant and must abort the record; see Mapper.Transform.
func (t *Transformer) Transform(source records.SourceRecord) (records.TargetRecord, []Warning, error) {
	out, warnings, err := t.mapper.Transform(source, t.newTarget)
	if err != nil {
		return nil, nil, err
	}
	return out.(records.TargetRecord), warnings, nil
}

// Registry resolves a sourceType discriminator to its Transformer, mirroring
// the extractor factory's dispatch-by-discriminator pattern (spec §9,
// "polymorphic record families").
type Registry struct {
	transformers map[string]*Transformer
}

// NewRegistry builds the registry with the one transformer per source family
// named in spec §3/§4.5. Name-collision overrides (tradeSide -> last_trade_side)
// are declared here, next to the transformer they apply to, rather than
// buried in the generic engine.
func NewRegistry() *Registry {
	r := &Registry{transformers: make(map[string]*Transformer)}

	r.register(&Transformer{
		SourceType: records.SourceTypeXbondQuote,
		TargetType: records.DataTypeXbondQuote,
		mapper:     NewMapper(&records.XbondQuoteSource{}, &records.XbondQuoteTarget{}, nil),
		newTarget:  func() interface{} { return records.NewXbondQuoteTarget() },
	})

	r.register(&Transformer{
		SourceType: records.SourceTypeXbondTrade,
		TargetType: records.DataTypeXbondTrade,
		mapper: NewMapper(&records.XbondTradeSource{}, &records.XbondTradeTarget{}, map[string]string{
			// tradeSide -> last_trade_side (spec §4.5, "explicit remapping
			// takes precedence and excludes the source field from the
			// name-match pass"). counterparty_code is deliberately left
			// unmapped: it is documented upstream as always empty and must
			// never be populated on the target (spec §9 open question).
			"tradeSide": "last_trade_side",
		}),
		newTarget: func() interface{} { return records.NewXbondTradeTarget() },
	})

	r.register(&Transformer{
		SourceType: records.SourceTypeBondFutureQuote,
		TargetType: records.DataTypeBondFutureQuote,
		mapper:     NewMapper(&records.BondFutureQuoteSource{}, &records.BondFutureQuoteTarget{}, nil),
		newTarget:  func() interface{} { return records.NewBondFutureQuoteTarget() },
	})

	return r
}

func (r *Registry) register(t *Transformer) {
	r.transformers[t.SourceType] = t
}

// Lookup returns the transformer registered for sourceType, or false if none
// is registered (the Transform subprocess turns this into a ConfigError per
// spec §4.5, "unknown types fail with ConfigError").
func (r *Registry) Lookup(sourceType string) (*Transformer, bool) {
	t, ok := r.transformers[sourceType]
	return t, ok
}
