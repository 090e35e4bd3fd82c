package docstore

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

var timeType = reflect.TypeOf(time.Time{})

// Decode copies rec into the struct pointed to by out using mapstructure
// tags. Time fields accept epoch milliseconds or RFC3339 strings.
func Decode(rec Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millisToTime,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("docstore decoder: %w", err)
	}

	if err = dec.Decode(map[string]any(rec)); err != nil {
		return fmt.Errorf("docstore decode: %w", err)
	}

	return nil
}

// Millis stores t as epoch milliseconds. The zero time becomes nil.
func Millis(t time.Time) any {
	if t.IsZero() {
		return nil
	}

	return t.UnixMilli()
}

func millisToTime(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}

	switch v := data.(type) {
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case int:
		return time.UnixMilli(int64(v)).UTC(), nil
	default:
		return data, nil
	}
}
