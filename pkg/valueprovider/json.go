package valueprovider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
)

// NewJSON flattens a JSON document into a provider declaring the JSON source.
//
//	{"name":"a","lines":[{"sku":"x"}],"tags":["go","web"]}
//
// yields name=a, lines[0].sku=x, tags[0]=go, tags[1]=web. Null values are
// stored as empty strings. A top-level array is indexed from the empty prefix
// ("[0].sku").
func NewJSON(data []byte) (*Values, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return NewValues(bindingsource.JSON, nil), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON document", ErrInvalidJSON)
	}

	values := make(map[string][]string)
	flattenJSON(values, "", doc)
	return NewValues(bindingsource.JSON, values), nil
}

func flattenJSON(values map[string][]string, prefix string, node any) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenJSON(values, key, child)
		}
	case []any:
		for i, child := range v {
			flattenJSON(values, prefix+"["+strconv.Itoa(i)+"]", child)
		}
	case json.Number:
		values[prefix] = append(values[prefix], v.String())
	case string:
		values[prefix] = append(values[prefix], v)
	case bool:
		values[prefix] = append(values[prefix], strconv.FormatBool(v))
	case nil:
		values[prefix] = append(values[prefix], "")
	}
}
