package registry

import (
	"encoding/json"

	"github.com/hetu-lang/hetu/values"
)

// decodeJSON decodes raw as a JSON document into the uniform Value model
// (§4.J "JSON resource"): objects become TypeMap, arrays become TypeList,
// and JSON numbers become int when they round-trip exactly, else float.
func decodeJSON(raw []byte) (*values.Value, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return goToValue(decoded), nil
}

func goToValue(v interface{}) *values.Value {
	switch t := v.(type) {
	case nil:
		return values.NewNull()
	case bool:
		return values.NewBool(t)
	case float64:
		if t == float64(int64(t)) {
			return values.NewInt(int64(t))
		}
		return values.NewFloat(t)
	case string:
		return values.NewString(t)
	case []interface{}:
		items := make([]*values.Value, len(t))
		for i, elem := range t {
			items[i] = goToValue(elem)
		}
		return values.NewList(items)
	case map[string]interface{}:
		m := make(map[string]*values.Value, len(t))
		for k, elem := range t {
			m[k] = goToValue(elem)
		}
		return values.NewMap(m)
	default:
		return values.NewNull()
	}
}
