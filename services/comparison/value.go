package comparison

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/EnmanuelReynoso23/el-pensum/model"
)

// Unavailable is the raw value emitted for a missing attribute
const Unavailable = "N/D"

// Value is one attribute of an offering. The zero Value is missing.
type Value struct {
	Present bool
	Number  float64
	Text    string
	IsText  bool
}

// NumberValue returns a present numeric value
func NumberValue(f float64) Value {
	return Value{Present: true, Number: f}
}

// TextValue returns a text value, missing when s is empty
func TextValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Present: true, Text: s, IsText: true}
}

func (v Value) String() string {
	switch {
	case !v.Present:
		return Unavailable
	case v.IsText:
		return v.Text
	default:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
}

// MarshalJSON emits the number, the text or the Unavailable sentinel
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case !v.Present:
		return json.Marshal(Unavailable)
	case v.IsText:
		return json.Marshal(v.Text)
	default:
		return json.Marshal(v.Number)
	}
}

// UnmarshalJSON reverses MarshalJSON: a number is numeric, the Unavailable
// sentinel and null are missing, any other string is text
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == Unavailable {
			*v = Value{}
		} else {
			*v = TextValue(s)
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("comparison value: %w", err)
	}
	*v = NumberValue(f)
	return nil
}

func floatValue(p *float64) Value {
	if p == nil {
		return Value{}
	}
	return NumberValue(*p)
}

// Attribute reads the attribute named key from o. A nil offering yields a missing value.
func Attribute(o *model.Offering, key string) Value {
	if o == nil {
		return Value{}
	}

	switch key {
	case "duration_years":
		return floatValue(o.DurationYears)
	case "enrollment_cost":
		return floatValue(o.EnrollmentCost)
	case "admission_cost":
		return floatValue(o.AdmissionCost)
	case "credit_cost":
		return floatValue(o.CreditCost)
	case "total_credits":
		if o.TotalCredits == nil {
			return Value{}
		}
		return NumberValue(float64(*o.TotalCredits))
	case "card_cost":
		return floatValue(o.CardCost)
	case "syllabus_url":
		if o.SyllabusURL == nil {
			return Value{}
		}
		return TextValue(*o.SyllabusURL)
	default:
		return Value{}
	}
}

// AttributeKeys lists every key Attribute understands
var AttributeKeys = []string{
	"duration_years",
	"enrollment_cost",
	"admission_cost",
	"credit_cost",
	"total_credits",
	"card_cost",
	"syllabus_url",
}
