package entities

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

var errUnknownKind = domainerrors.ErrUnknownKind

// unknownField returns the error Assign reports for a field the kind does not have.
func unknownField(kind Kind, field string) error {
	return domainerrors.NewInvalidArgument(string(kind)+".Assign", fmt.Sprintf("unknown field %q", field))
}

// badValue wraps a conversion failure with kind/field context.
func badValue(kind Kind, field string, err error) error {
	return domainerrors.NewInvalidArgument(string(kind)+".Assign", fmt.Sprintf("field %q: %v", field, err))
}

// Normalize приводит значение к канонической форме для сравнения:
// целые -> int64, указатели разыменовываются, decimal -> string, time -> UTC.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC()
	case time.Time:
		return x.UTC()
	case decimal.Decimal:
		return x.String()
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return x.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	return v
}

// SameValue compares two field values after normalization.
func SameValue(a, b any) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	if ta, ok := na.(time.Time); ok {
		tb, ok := nb.(time.Time)
		return ok && ta.Equal(tb)
	}
	if reflect.TypeOf(na).Comparable() && reflect.TypeOf(nb).Comparable() && na == nb {
		return true
	}
	return fmt.Sprint(na) == fmt.Sprint(nb)
}

// ============================================
// Conversion helpers used by Assign
// ============================================

func toInt64(v any) (int64, error) {
	switch x := Normalize(v).(type) {
	case int64:
		return x, nil
	case float64:
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", v)
	}
}

func toOptInt64(v any) (*int64, error) {
	if Normalize(v) == nil {
		return nil, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func toInt(v any) (int, error) {
	n, err := toInt64(v)
	return int(n), err
}

func toString(v any) (string, error) {
	switch x := Normalize(v).(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(x), nil
	}
}

func toBool(v any) (bool, error) {
	switch x := Normalize(v).(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", v)
	}
}

func toTime(v any) (time.Time, error) {
	switch x := Normalize(v).(type) {
	case time.Time:
		return x, nil
	case string:
		return time.Parse(time.RFC3339Nano, x)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
	}
}

func toOptTime(v any) (*time.Time, error) {
	if Normalize(v) == nil {
		return nil, nil
	}
	t, err := toTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := Normalize(v).(type) {
	case string:
		return decimal.NewFromString(x)
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("cannot convert %T to decimal", v)
	}
}

// optInt64 renders an optional id as a column value (nil for NULL).
func optInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func optTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}
