package domain

// StoreKey is the fixed name the attribution blob is kept under, in both the
// durable and the session store.
const StoreKey = "ttk_attribution"

const (
	FieldClickID     = "ttclid"
	FieldClickIDAlt  = "click_id"
	FieldUTMSource   = "utm_source"
	FieldUTMMedium   = "utm_medium"
	FieldUTMCampaign = "utm_campaign"
	FieldUTMTerm     = "utm_term"
	FieldUTMContent  = "utm_content"
)

// ClickIDKeys are the accepted names of the attribution token, first wins.
var ClickIDKeys = []string{FieldClickID, FieldClickIDAlt}

// UTMKeys are the five campaign tagging fields.
var UTMKeys = []string{
	FieldUTMSource,
	FieldUTMMedium,
	FieldUTMCampaign,
	FieldUTMTerm,
	FieldUTMContent,
}

// TrackedKeys is every field mirrored between the stores and the page URL.
var TrackedKeys = append(append([]string{}, ClickIDKeys...), UTMKeys...)

// AttributionRecord maps tracked field names to values. Absent fields are
// simply missing from the map; empty strings are never stored.
type AttributionRecord map[string]string

// Get returns the value for key and whether it is set.
func (r AttributionRecord) Get(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// First returns the value of the first key that is set.
func (r AttributionRecord) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r.Get(k); ok {
			return v, true
		}
	}
	return "", false
}

// SetIfAbsent stores value under key unless the key already holds a value.
// It reports whether the record changed.
func (r AttributionRecord) SetIfAbsent(key, value string) bool {
	if value == "" {
		return false
	}
	if _, ok := r.Get(key); ok {
		return false
	}
	r[key] = value
	return true
}

// ClickID returns the attribution token stored under any accepted name.
func (r AttributionRecord) ClickID() (string, bool) {
	return r.First(ClickIDKeys...)
}

// UTM returns only the UTM fields that are set.
func (r AttributionRecord) UTM() map[string]string {
	out := make(map[string]string, len(UTMKeys))
	for _, k := range UTMKeys {
		if v, ok := r.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// Clone returns a copy safe to mutate.
func (r AttributionRecord) Clone() AttributionRecord {
	out := make(AttributionRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
