package validator

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// キーがない
	ErrMissing = errors.New("missing")

	// 値の型・書式が不正
	ErrBadValue = errors.New("bad value")

	// bodyがJSONオブジェクトではない
	ErrNotMapping = errors.New("body of request contained bad or no data")
)

// どのキーで失敗したかを持つ。
type FieldError struct {
	Key string
	Err error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrMissing) {
		return "missing " + e.Key
	}
	return "bad value for " + e.Key
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// date_orderで受け付ける書式。先頭がシリアライズ時の書式。
var dateLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 GMT",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// マッピング（JSONオブジェクト）であることを確認
func Mapping(data any) (map[string]any, error) {
	m, ok := data.(map[string]any)
	if !ok || m == nil {
		return nil, ErrNotMapping
	}
	return m, nil
}

func Has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

// 必須の整数。数値文字列（"3"）も受け付ける。
func Int64(m map[string]any, key string) (int64, error) {
	v, ok := m[key]
	if !ok {
		return 0, &FieldError{Key: key, Err: ErrMissing}
	}
	i, ok := toInt64(v)
	if !ok {
		return 0, &FieldError{Key: key, Err: ErrBadValue}
	}
	return i, nil
}

// 必須の金額。nullは不可。
func Decimal(m map[string]any, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok {
		return decimal.Zero, &FieldError{Key: key, Err: ErrMissing}
	}
	d, ok := toDecimal(v)
	if !ok {
		return decimal.Zero, &FieldError{Key: key, Err: ErrBadValue}
	}
	return d, nil
}

// 任意の金額。キーなし・nullは0。
func OptionalDecimal(m map[string]any, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Zero, nil
	}
	d, ok := toDecimal(v)
	if !ok {
		return decimal.Zero, &FieldError{Key: key, Err: ErrBadValue}
	}
	return d, nil
}

// 必須の日時。キーは必須だが、null/空文字はゼロ値（既定値に任せる）。
func Time(m map[string]any, key string) (time.Time, error) {
	v, ok := m[key]
	if !ok {
		return time.Time{}, &FieldError{Key: key, Err: ErrMissing}
	}
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
	}
	return time.Time{}, &FieldError{Key: key, Err: ErrBadValue}
}

// 任意の配列。ok=falseはキーなし（nullもキーなし扱い）。
func List(m map[string]any, key string) ([]any, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false, &FieldError{Key: key, Err: ErrBadValue}
	}
	return list, true, nil
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case float64:
		return floatToInt64(t)
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// 小数部があるものは整数として扱わない
func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case decimal.Decimal:
		return t, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
