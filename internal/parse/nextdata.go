package parse

import (
	"encoding/json"
	"sort"
	"strings"

	"ycscout/internal/types"

	"golang.org/x/net/html"
)

// FromNextData extracts company fields from the page's __NEXT_DATA__
// JSON. YC has changed the payload shape across site generations, so
// every field is located by deep key search over several spellings
// rather than a fixed path. Returns false when no payload decodes.
func FromNextData(doc *html.Node) (types.CompanyRecord, bool) {
	var rec types.CompanyRecord

	payload := nextDataPayload(doc)
	if payload == "" {
		return rec, false
	}

	var data any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return rec, false
	}

	// Narrow to the company object when one is identifiable; search the
	// whole payload otherwise.
	root := data
	if obj := deepFindFirst(data, "company", "startup", "startupData", "pageData"); obj != nil {
		switch obj.(type) {
		case map[string]any, []any:
			root = obj
		}
	}

	if website := websiteFrom(root); website != "" {
		rec.Website = website
	}

	if status := labelOrText(deepFindFirst(root, "status", "companyStatus")); status != "" {
		rec.Status = status
	}

	if pp := deepFindFirst(root, "primaryPartner", "primary_partner", "primary_partner_name"); pp != nil {
		if m, ok := pp.(map[string]any); ok {
			pp = firstOf(m, "name", "full_name")
		}
		if s, ok := pp.(string); ok {
			rec.PrimaryPartner = s
		}
	}

	if n, ok := looseInt(deepFindFirst(root, "founded", "foundedYear", "founded_year")); ok {
		rec.FoundedYear = n
	}
	if n, ok := looseInt(deepFindFirst(root, "teamSize", "team_size", "teamsize")); ok {
		rec.TeamSize = n
	}

	if batch := deepFindFirst(root, "batch", "ycBatch", "yc_batch"); batch != nil {
		if m, ok := batch.(map[string]any); ok {
			batch = firstOf(m, "name", "label")
		}
		if s, ok := batch.(string); ok {
			rec.Batch = s
		}
	}

	if loc := deepFindFirst(root, "location", "hqLocation", "city"); loc != nil {
		if m, ok := loc.(map[string]any); ok {
			loc = firstOf(m, "name", "displayName")
		}
		if s, ok := loc.(string); ok {
			rec.Location = s
		}
	}

	names, linkedin := foundersFrom(root)
	rec.ActiveFounders = types.JoinDistinct(names)
	rec.FoundersLinkedIn = types.JoinDistinct(linkedin)

	return rec, true
}

// websiteFrom digs out the company homepage, rejecting YC-internal URLs.
func websiteFrom(root any) string {
	website := deepFindFirst(root, "website", "websiteUrl", "url")
	if list, ok := website.([]any); ok && len(list) > 0 {
		website = list[0]
	}
	if m, ok := website.(map[string]any); ok {
		website = m["url"]
	}
	s, ok := website.(string)
	if !ok || s == "" || strings.Contains(s, "ycombinator.com") {
		return ""
	}
	return s
}

// foundersFrom collects active founders' names and any LinkedIn URLs.
// A founder entry without is_active counts as active.
func foundersFrom(root any) (names, linkedin []string) {
	list, ok := deepFindFirst(root, "founders", "team", "founderData").([]any)
	if !ok {
		return nil, nil
	}
	for _, item := range list {
		f, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := firstOf(f, "name", "full_name", "display_name").(string)
		active := true
		if v, ok := f["is_active"].(bool); ok {
			active = v
		}
		if name != "" && active {
			names = append(names, name)
		}

		li := firstOf(f, "linkedin_url", "linkedin", "linkedinUrl")
		if li == nil {
			if social, ok := f["social"].(map[string]any); ok {
				li = social["linkedin"]
			}
		}
		if s, ok := li.(string); ok && s != "" {
			linkedin = append(linkedin, s)
		}
	}
	return names, linkedin
}

// deepFindAll recursively collects all values stored under key anywhere
// in the nested structure. encoding/json loses object order and Go map
// iteration is randomized, so objects are walked in sorted-key order;
// a key that occurs more than once always resolves the same way.
func deepFindAll(obj any, key string, out *[]any) {
	switch v := obj.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == key {
				*out = append(*out, v[k])
			}
			deepFindAll(v[k], key, out)
		}
	case []any:
		for _, item := range v {
			deepFindAll(item, key, out)
		}
	}
}

// deepFindFirst returns the first value found for any of the keys,
// trying keys in order.
func deepFindFirst(obj any, keys ...string) any {
	for _, key := range keys {
		var found []any
		deepFindAll(obj, key, &found)
		if len(found) > 0 {
			return found[0]
		}
	}
	return nil
}

// labelOrText unwraps values that arrive either as a plain string or
// as {"label": ...} / {"text": ...} objects.
func labelOrText(v any) string {
	if m, ok := v.(map[string]any); ok {
		v = firstOf(m, "label", "text")
	}
	s, _ := v.(string)
	return s
}

// firstOf returns the first non-nil value among the given map keys.
func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// looseInt coerces a JSON value (number, numeric string, decorated
// string) to an int.
func looseInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int(n), true
	case string:
		return types.ParseLooseInt(n)
	default:
		return 0, false
	}
}
