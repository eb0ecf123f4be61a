package extract

import "encoding/json"

// fromJSONLD returns a partial built from the first Person or ProfilePage
// linked-data block, or nil when the page carries none. Blocks that fail to
// parse are skipped, not fatal.
func fromJSONLD(doc *Document) *Partial {
	for _, block := range doc.JSONLDBlocks() {
		var data any
		if err := json.Unmarshal([]byte(block), &data); err != nil {
			continue
		}
		if list, ok := data.([]any); ok {
			if len(list) == 0 {
				continue
			}
			data = list[0]
		}
		obj, ok := data.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := obj["@type"].(string)
		if typ != "Person" && typ != "ProfilePage" {
			continue
		}

		p := &Partial{
			Name:      stringField(obj, "name"),
			Bio:       stringField(obj, "description"),
			Expertise: stringsField(obj, "knowsAbout"),
		}
		if aff := affiliationName(obj["affiliation"]); aff != "" {
			p.Affiliations = []string{aff}
		}
		return p
	}
	return nil
}

// fromOpenGraph recovers name and bio from OpenGraph or description meta
// tags. Returns nil when neither is present.
func fromOpenGraph(doc *Document) *Partial {
	p := &Partial{
		Name: doc.MetaProperty("og:title"),
		Bio:  doc.MetaProperty("og:description"),
	}
	if p.Bio == "" {
		p.Bio = doc.MetaName("description")
	}
	if p.Name == "" && p.Bio == "" {
		return nil
	}
	return p
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func stringsField(obj map[string]any, key string) []string {
	list, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// affiliationName handles both the plain-string and Organization-object
// forms schema.org allows.
func affiliationName(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case map[string]any:
		return stringField(a, "name")
	default:
		return ""
	}
}
