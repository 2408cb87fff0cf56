package element

import (
	"encoding/json"
	"fmt"
)

// List is an ordered element log. It decodes every entry through Decode so
// unknown types survive a round trip.
type List []Element

func (s Stroke) MarshalJSON() ([]byte, error) {
	type plain Stroke
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindStroke, plain(s)})
}

func (r Rectangle) MarshalJSON() ([]byte, error) {
	type plain Rectangle
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindRectangle, plain(r)})
}

func (c Circle) MarshalJSON() ([]byte, error) {
	type plain Circle
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindCircle, plain(c)})
}

func (t Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindText, plain(t)})
}

func (i Image) MarshalJSON() ([]byte, error) {
	type plain Image
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindImage, plain(i)})
}

func (u Unknown) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return json.Marshal(struct {
			Type string `json:"type"`
		}{u.Type})
	}
	return u.Raw, nil
}

// Decode reads one element from its tagged JSON form.
func Decode(data []byte) (Element, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode element: %w", err)
	}

	var (
		e   Element
		err error
	)
	switch Kind(head.Type) {
	case KindStroke:
		var s Stroke
		err = json.Unmarshal(data, &s)
		e = s
	case KindRectangle:
		var r Rectangle
		err = json.Unmarshal(data, &r)
		e = r
	case KindCircle:
		var c Circle
		err = json.Unmarshal(data, &c)
		e = c
	case KindText:
		var t Text
		err = json.Unmarshal(data, &t)
		e = t
	case KindImage:
		var i Image
		err = json.Unmarshal(data, &i)
		e = i
	default:
		raw := make([]byte, len(data))
		copy(raw, data)
		e = Unknown{Type: head.Type, Raw: raw}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s element: %w", head.Type, err)
	}
	return e, nil
}

func (l *List) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	for i, raw := range raws {
		e, err := Decode(raw)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, e)
	}
	*l = out
	return nil
}
