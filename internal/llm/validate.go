package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds validators by Schema.Name.
var compiled sync.Map

// validateResponse checks raw against s. A nil schema accepts anything.
func validateResponse(s *Schema, raw json.RawMessage) *Error {
	if s == nil {
		return nil
	}
	invalid := func(err error) *Error {
		return &Error{Kind: KindInvalid, Content: raw, Err: err}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid(fmt.Errorf("not JSON: %w", err))
	}
	v, err := validator(s)
	if err != nil {
		return invalid(err)
	}
	if err := v.Validate(doc); err != nil {
		return invalid(fmt.Errorf("%s: %w", s.Name, err))
	}
	return nil
}

func validator(s *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(s.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	// The compiler wants the decoder's value shapes, not Go literals.
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", s.Name, err)
	}

	url := "prepwise://schemas/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", s.Name, err)
	}
	v, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
	}
	compiled.Store(s.Name, v)
	return v, nil
}

// Decode unmarshals a structured response into v.
func Decode(resp *Response, v any) error {
	if err := json.Unmarshal(resp.Content, v); err != nil {
		return &Error{Kind: KindInvalid, Content: resp.Content, Err: err}
	}
	return nil
}
