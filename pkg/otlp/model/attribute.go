package model

import (
	"fmt"
	"strconv"
)

// KeyValue is one attribute entry on a span or resource.
type KeyValue struct {
	Key   string   `json:"key"`
	Value AnyValue `json:"value"`
}

// AnyValue is the tagged union used for OTLP/JSON attribute values. Exactly
// one field is set. Integers are carried as decimal strings so 64-bit values
// survive the precision limits of JSON numbers.
type AnyValue struct {
	StringValue *string  `json:"stringValue,omitempty"`
	BoolValue   *bool    `json:"boolValue,omitempty"`
	IntValue    *string  `json:"intValue,omitempty"`
	DoubleValue *float64 `json:"doubleValue,omitempty"`
}

// NewAttribute converts a typed scalar into its tagged wire representation.
// Values outside the four supported kinds fall back to their string form.
func NewAttribute(key string, value interface{}) KeyValue {
	switch typedValue := value.(type) {
	case bool:
		return KeyValue{Key: key, Value: AnyValue{BoolValue: &typedValue}}
	case int:
		intString := strconv.FormatInt(int64(typedValue), 10)
		return KeyValue{Key: key, Value: AnyValue{IntValue: &intString}}
	case int64:
		intString := strconv.FormatInt(typedValue, 10)
		return KeyValue{Key: key, Value: AnyValue{IntValue: &intString}}
	case float64:
		return KeyValue{Key: key, Value: AnyValue{DoubleValue: &typedValue}}
	case string:
		return KeyValue{Key: key, Value: AnyValue{StringValue: &typedValue}}
	default:
		fallback := fmt.Sprintf("%v", value)
		return KeyValue{Key: key, Value: AnyValue{StringValue: &fallback}}
	}
}
