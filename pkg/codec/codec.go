package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Marshal encodes d in the given format.
func Marshal(d *domain.Diagram, f Format) ([]byte, error) {
	if d == nil {
		return nil, domain.ErrNilInput
	}
	switch f {
	case JSON:
		return json.MarshalIndent(d, "", "  ")
	case YAML:
		return yaml.Marshal(d)
	case MsgPack:
		return msgpack.Marshal(d)
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

// Encode writes d to w in the given format.
func Encode(w io.Writer, d *domain.Diagram, f Format) error {
	data, err := Marshal(d, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// decodeGeneric decodes data into plain maps and slices.
func decodeGeneric(data []byte, f Format) (map[string]any, error) {
	var raw any
	var err error
	switch f {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		err = dec.Decode(&raw)
	case YAML:
		err = yaml.Unmarshal(data, &raw)
	case MsgPack:
		err = msgpack.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", f, err)
	}

	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s document is not an object (got %T)", f, raw)
	}
	return doc, nil
}

// normalize turns map[any]any (older YAML and msgpack shapes) into map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}
