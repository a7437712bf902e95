package formats

import "gopkg.in/yaml.v3"

// DecodeManifest parses a YAML authoring manifest into a document. The
// manifest uses the same model as the JSON payload; it exists so rigs for
// tests and examples can be written by hand without binary tooling.
func DecodeManifest(data []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, invalid("manifest", "malformed YAML: %v", err)
	}
	return doc, nil
}

// EncodeManifest renders a document as a YAML manifest.
func EncodeManifest(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
