package sim

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// formValue decodes a JSON string, number or null into the text a form
// field would hold. Numbers keep their literal spelling.
type formValue string

func (f *formValue) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = formValue(x)
	case json.Number:
		*f = formValue(x.String())
	default:
		return fmt.Errorf("form value must be a string or a number, got %s", b)
	}
	return nil
}

// UnmarshalJSON accepts each field as a string or a number.
func (r *RawRule) UnmarshalJSON(b []byte) error {
	var aux struct {
		Start formValue `json:"start"`
		End   formValue `json:"end"`
		Size  formValue `json:"size"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RawRule{Start: string(aux.Start), End: string(aux.End), Size: string(aux.Size)}
	return nil
}

// UnmarshalJSON accepts the numeric fields as strings or numbers.
func (p *RawParameters) UnmarshalJSON(b []byte) error {
	var aux struct {
		StartPrice      formValue `json:"start_price"`
		AddInterval     formValue `json:"add_interval"`
		DisplayInterval formValue `json:"display_interval"`
		Direction       formValue `json:"direction"`
		Sampling        formValue `json:"sampling"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = RawParameters{
		StartPrice:      string(aux.StartPrice),
		AddInterval:     string(aux.AddInterval),
		DisplayInterval: string(aux.DisplayInterval),
		Direction:       string(aux.Direction),
		Sampling:        string(aux.Sampling),
	}
	return nil
}
