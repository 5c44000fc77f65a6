package cli

import (
	"io"

	"gopkg.in/yaml.v3"
)

// emit writes data as YAML, or calls text for the text format.
func (a *app) emit(w io.Writer, data any, text func() error) error {
	if a.format != "yaml" {
		return text()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// mapping builds an ordered YAML mapping from alternating keys and values.
func mapping(kv ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		var key, val yaml.Node
		key.SetString(kv[i].(string))
		if err := val.Encode(kv[i+1]); err != nil {
			val.SetString(err.Error())
		}
		n.Content = append(n.Content, &key, &val)
	}
	return n
}
