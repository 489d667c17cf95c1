package rag

import (
	"maps"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/tmc/langchaingo/schema"
)

// Metadata keys carried alongside every chunk.
const (
	MetaID     = "id"
	MetaSource = "source"
	MetaPage   = "page"
)

// toSchema converts a capability document into a langchaingo document.
func toSchema(doc capability.Document) schema.Document {
	meta := make(map[string]any, len(doc.Metadata)+3)
	maps.Copy(meta, doc.Metadata)
	if doc.ID != "" {
		meta[MetaID] = doc.ID
	}
	if doc.Source != "" {
		meta[MetaSource] = doc.Source
	}
	meta[MetaPage] = doc.Page
	return schema.Document{
		PageContent: doc.Text,
		Metadata:    meta,
		Score:       float32(doc.Score),
	}
}

// fromSchema converts a langchaingo document back, lifting the well-known
// metadata keys into fields.
func fromSchema(doc schema.Document) capability.Document {
	out := capability.Document{
		Text:  doc.PageContent,
		Score: float64(doc.Score),
	}
	if len(doc.Metadata) == 0 {
		return out
	}
	out.Metadata = make(map[string]any, len(doc.Metadata))
	for k, v := range doc.Metadata {
		switch k {
		case MetaID:
			out.ID, _ = v.(string)
		case MetaSource:
			out.Source, _ = v.(string)
		case MetaPage:
			out.Page = asInt(v)
		default:
			out.Metadata[k] = v
		}
	}
	if len(out.Metadata) == 0 {
		out.Metadata = nil
	}
	return out
}

// asInt accepts the numeric shapes metadata takes after a JSON round trip.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}
