// Package transform implements the name-based, reflection-driven field
// mapping engine described in spec §4.5 and §9 (design note (a), "dynamic
// field-by-name mapping"): two statically-known Go struct shapes are wired
// together by matching struct tags rather than by hand-written per-field
// assignment code, with cached accessor tables so the reflection cost is
// paid once per (sourceType, targetType) pair for the lifetime of the
// process (spec §5, "field accessor caches").
package transform

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// dateOnlyLayout is the upstream "formatted date string" layout named in
// spec §4.5's type conversion table.
const dateOnlyLayout = "2006.01.02"

// fieldTable maps an `etl:"..."` tag value to the index of the struct field
// carrying it, for one concrete type.
type fieldTable map[string]int

var tableCache sync.Map // map[reflect.Type]fieldTable

// buildFieldTable walks a struct type's fields once and indexes them by
// their etl tag. Fields tagged `etl:"-"` (extract-only bookkeeping, e.g.
// XbondQuoteSource.MessageOffset) and untagged fields are omitted.
func buildFieldTable(t reflect.Type) fieldTable {
	if cached, ok := tableCache.Load(t); ok {
		return cached.(fieldTable)
	}
	table := make(fieldTable)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("etl")
		if tag == "" || tag == "-" {
			continue
		}
		table[tag] = i
	}
	tableCache.Store(t, table)
	return table
}

// Mapper is bound to exactly one (sourceType, targetType) pair, matching the
// "Transformer: statically bound to one (sourceType, targetType) pair"
// capability contract in spec §3.
type Mapper struct {
	sourceType reflect.Type // pointer-to-struct, e.g. *records.XbondTradeSource
	targetType reflect.Type // pointer-to-struct, e.g. *records.XbondTradeTarget

	// overrides holds explicit name-collision remappings (source tag ->
	// target tag), taking precedence over the name-match pass and excluding
	// the source tag from it, per spec §4.5.
	overrides map[string]string
}

// NewMapper builds a Mapper for the given source/target example values
// (typically the zero value and a fresh sentinel-initialized target,
// respectively — only their types are inspected). overrides may be nil.
func NewMapper(sourceExample, targetExample interface{}, overrides map[string]string) *Mapper {
	return &Mapper{
		sourceType: reflect.TypeOf(sourceExample),
		targetType: reflect.TypeOf(targetExample),
		overrides:  overrides,
	}
}

// Warning describes a field the engine could not map, for per-record
// diagnostics (never fatal — spec §4.5 says "skip with warning").
type Warning struct {
	Field  string
	Reason string
}

// Transform maps one source record onto a freshly constructed target
// record. newTarget must return a sentinel-initialized instance (spec §4.5's
// "sentinel initialization rule" — the engine itself never invents a
// sentinel, it only ever fails to overwrite one when a source field is nil
// or absent).
//
// Transform returns a non-nil error only when source violates the Mapper's
// static binding invariant (spec §3: "Transformer: statically bound to one
// (sourceType, targetType) pair") — its concrete type does not match the
// type this Mapper was built for, meaning the record was routed to the
// wrong transformer. That is fatal and aborts the record; per-field
// conversion problems never are and always degrade to a Warning instead.
func (m *Mapper) Transform(source interface{}, newTarget func() interface{}) (interface{}, []Warning, error) {
	srcVal := reflect.ValueOf(source)
	if !srcVal.IsValid() || (srcVal.Kind() == reflect.Ptr && srcVal.IsNil()) {
		return newTarget(), []Warning{{Reason: "nil source record"}}, nil
	}
	if srcVal.Type() != m.sourceType {
		return nil, nil, fmt.Errorf("mapper bound to %s received %s", m.sourceType, srcVal.Type())
	}
	srcElem := srcVal.Elem()
	srcType := srcElem.Type()

	target := newTarget()
	dstVal := reflect.ValueOf(target)
	dstElem := dstVal.Elem()
	dstType := dstElem.Type()

	srcTable := buildFieldTable(srcType)
	dstTable := buildFieldTable(dstType)

	var warnings []Warning
	handled := make(map[string]bool, len(m.overrides))

	// Explicit overrides run first and exclude their source tag from the
	// name-match pass below.
	for srcTag, dstTag := range m.overrides {
		handled[srcTag] = true
		srcIdx, ok := srcTable[srcTag]
		if !ok {
			continue
		}
		dstIdx, ok := dstTable[dstTag]
		if !ok {
			warnings = append(warnings, Warning{Field: srcTag, Reason: fmt.Sprintf("override target %q not found", dstTag)})
			continue
		}
		if w := convertField(srcElem.Field(srcIdx), dstElem.Field(dstIdx), srcTag); w != nil {
			warnings = append(warnings, *w)
		}
	}

	// Name-match pass: every source field present in both tables, except
	// those already consumed by an override.
	for tag, srcIdx := range srcTable {
		if handled[tag] {
			continue
		}
		dstIdx, ok := dstTable[tag]
		if !ok {
			// Target has no field by this name: nothing to do, not a warning
			// (most source-only fields are intentional, e.g. bookkeeping).
			continue
		}
		if w := convertField(srcElem.Field(srcIdx), dstElem.Field(dstIdx), tag); w != nil {
			warnings = append(warnings, *w)
		}
	}

	return target, warnings, nil
}

// convertField applies the type conversion table in spec §4.5. It returns a
// non-nil Warning when the pair could not be converted; the target field is
// left at its sentinel value in that case.
func convertField(src, dst reflect.Value, fieldName string) *Warning {
	// same type -> direct copy.
	if src.Type() == dst.Type() {
		dst.Set(src)
		return nil
	}

	switch {
	// integer-box / long-box -> unbox: nil -> sentinel (-1), already set by
	// the target constructor, so a nil pointer is simply left alone.
	case src.Kind() == reflect.Ptr && src.Type().Elem().Kind() == reflect.Int && dst.Kind() == reflect.Int:
		if src.IsNil() {
			return nil
		}
		dst.SetInt(src.Elem().Int())
		return nil
	case src.Kind() == reflect.Ptr && src.Type().Elem().Kind() == reflect.Int64 && dst.Kind() == reflect.Int64:
		if src.IsNil() {
			return nil
		}
		dst.SetInt(src.Elem().Int())
		return nil

	// floating-box -> unbox: nil -> NaN, already set by the target
	// constructor.
	case src.Kind() == reflect.Ptr && src.Type().Elem().Kind() == reflect.Float64 && dst.Kind() == reflect.Float64:
		if src.IsNil() {
			return nil
		}
		dst.SetFloat(src.Elem().Float())
		return nil

	// local datetime (*time.Time) -> instant (time.Time), using the system
	// time zone already baked into the pointer by the row mapper.
	case src.Type() == reflect.TypeOf((*time.Time)(nil)) && dst.Type() == reflect.TypeOf(time.Time{}):
		if src.IsNil() {
			return &Warning{Field: fieldName, Reason: "receive time absent"}
		}
		dst.Set(src.Elem())
		return nil

	// formatted date string (YYYY.MM.DD) -> calendar date.
	case src.Kind() == reflect.String && dst.Type() == reflect.TypeOf(time.Time{}):
		raw := src.String()
		if raw == "" {
			return &Warning{Field: fieldName, Reason: "empty date string"}
		}
		parsed, err := time.Parse(dateOnlyLayout, raw)
		if err != nil {
			return &Warning{Field: fieldName, Reason: fmt.Sprintf("unparseable date %q: %v", raw, err)}
		}
		dst.Set(reflect.ValueOf(parsed))
		return nil

	default:
		return &Warning{Field: fieldName, Reason: fmt.Sprintf("no conversion from %s to %s", src.Type(), dst.Type())}
	}
}
