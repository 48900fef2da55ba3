package telemetrics

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// OptionalFloat is a float that may be absent on the wire.
// Absent fields and JSON null both decode to an invalid value.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some returns a present OptionalFloat.
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// None returns an absent OptionalFloat.
func None() OptionalFloat {
	return OptionalFloat{}
}

// Get returns the value and whether it is present.
func (o OptionalFloat) Get() (float64, bool) {
	return o.Value, o.Valid
}

// OrDefault returns the value, or def when absent.
func (o OptionalFloat) OrDefault(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

func (o OptionalFloat) String() string {
	if !o.Valid {
		return "null"
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64)
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
