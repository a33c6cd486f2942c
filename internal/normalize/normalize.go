package normalize

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ドライバがテキストで返した値も含めて型を揃える
var ErrInvalidValue = errors.New("invalid value")

func invalid(v any, want string) error {
	return fmt.Errorf("%w: cannot convert %T(%v) to %s", ErrInvalidValue, v, v, want)
}

// Deref はポインタで返された値（sqliteの式カラムは *any になる）の中身を返す。nilポインタはnil
func Deref(v any) any {
	for v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	return v
}

// number は整数・浮動小数の各種（名前付き型も含む）を取り出す
func number(v any) (i int64, f float64, isFloat, ok bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), float64(rv.Int()), false, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, 0, false, false
		}
		return int64(u), float64(u), false, true
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), rv.Float(), true, true
	}
	return 0, 0, false, false
}

// 文字列・[]byteは前後の空白を落としてから解釈する
func text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case []byte:
		return strings.TrimSpace(string(t)), true
	}
	return "", false
}

// Int64 は整数に変換する。nilは0。
func Int64(v any) (int64, error) {
	v = Deref(v)
	switch t := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	}
	if i, _, _, ok := number(v); ok {
		return i, nil
	}
	s, ok := text(v)
	if !ok {
		return 0, invalid(v, "int64")
	}
	if s == "" {
		return 0, nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// "12.00" のようなDECIMAL表現
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, invalid(v, "int64")
		}
		return int64(f), nil
	}
	return i, nil
}

// NullInt64 はnil/空文字をnilとして返す。
func NullInt64(v any) (*int64, error) {
	if isNull(v) {
		return nil, nil
	}
	i, err := Int64(v)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Float は浮動小数に変換する。nil（任意の金額項目が無い場合）は0。
func Float(v any) (float64, error) {
	v = Deref(v)
	if v == nil {
		return 0, nil
	}
	if _, f, _, ok := number(v); ok {
		return f, nil
	}
	s, ok := text(v)
	if !ok {
		return 0, invalid(v, "float64")
	}
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalid(v, "float64")
	}
	return f, nil
}

// Money は小数2桁に丸めた金額を返す。
func Money(v any) (float64, error) {
	f, err := Float(v)
	if err != nil {
		return 0, err
	}
	return Round(f, 2), nil
}

// Rate は小数4桁に丸めた税率・換算レートを返す。
func Rate(v any) (float64, error) {
	f, err := Float(v)
	if err != nil {
		return 0, err
	}
	return Round(f, 4), nil
}

// Round は四捨五入（0から遠い方へ）
func Round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

// Bool は 0/1, "0"/"1", "true"/"false" を受け付ける。
func Bool(v any) (bool, error) {
	v = Deref(v)
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	}
	if s, ok := text(v); ok {
		switch strings.ToLower(s) {
		case "", "0", "f", "false", "no":
			return false, nil
		case "1", "t", "true", "yes":
			return true, nil
		}
		return false, invalid(v, "bool")
	}
	i, err := Int64(v)
	if err != nil {
		return false, invalid(v, "bool")
	}
	return i != 0, nil
}

// String は文字列に変換する。nilは空文字。
func String(v any) (string, error) {
	v = Deref(v)
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case time.Time:
		return t.Format(time.RFC3339), nil
	}
	if i, f, isFloat, ok := number(v); ok {
		if isFloat {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return strconv.FormatInt(i, 10), nil
	}
	return "", invalid(v, "string")
}

// NullString はNULLをnilとして返す。
func NullString(v any) (*string, error) {
	v = Deref(v)
	if v == nil {
		return nil, nil
	}
	s, err := String(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Unix はUNIX秒で保存された時刻を変換する。time.Timeはそのまま受け取る。
func Unix(v any) (time.Time, error) {
	v = Deref(v)
	if t, ok := v.(time.Time); ok {
		return t.UTC(), nil
	}
	if s, ok := text(v); ok && s != "" {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			t, perr := time.Parse(time.RFC3339, s)
			if perr != nil {
				return time.Time{}, invalid(v, "time")
			}
			return t.UTC(), nil
		}
	}
	i, err := Int64(v)
	if err != nil {
		return time.Time{}, invalid(v, "time")
	}
	if i == 0 {
		return time.Time{}, nil
	}
	return time.Unix(i, 0).UTC(), nil
}

// NullUnix はNULLまたは0をnilとして返す。
func NullUnix(v any) (*time.Time, error) {
	if isNull(v) {
		return nil, nil
	}
	t, err := Unix(v)
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return nil, nil
	}
	return &t, nil
}

func isNull(v any) bool {
	v = Deref(v)
	if v == nil {
		return true
	}
	s, ok := text(v)
	return ok && s == ""
}
