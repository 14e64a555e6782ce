package proxy

import "strings"

// Header is a single name/value pair as it appeared on the wire. Casing
// is preserved for emission; lookups are case-insensitive via the
// index Headers builds alongside the ordered list.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of header pairs plus a case-insensitive
// index into that list. Emission always walks the ordered list, so
// duplicate headers and original ordering survive a parse/re-emit
// round trip.
type Headers struct {
	list  []Header
	index map[string][]int // lower(name) -> indices into list
}

// NewHeaders returns an empty header list ready for Add.
func NewHeaders() *Headers {
	return &Headers{index: make(map[string][]int)}
}

// Add appends a header, preserving its original casing.
func (h *Headers) Add(name, value string) {
	key := strings.ToLower(name)
	h.index[key] = append(h.index[key], len(h.list))
	h.list = append(h.list, Header{Name: name, Value: value})
}

// Get returns the first value for name (case-insensitive) and whether
// it was present.
func (h *Headers) Get(name string) (string, bool) {
	idxs, ok := h.index[strings.ToLower(name)]
	if !ok || len(idxs) == 0 {
		return "", false
	}
	return h.list[idxs[0]].Value, true
}

// Has reports whether a header is present, case-insensitively.
func (h *Headers) Has(name string) bool {
	idxs, ok := h.index[strings.ToLower(name)]
	return ok && len(idxs) > 0
}

// Remove drops every occurrence of name (case-insensitive) from the
// list, preserving relative order of the remaining headers.
func (h *Headers) Remove(name string) {
	key := strings.ToLower(name)
	if _, ok := h.index[key]; !ok {
		return
	}
	filtered := h.list[:0:0]
	for _, hd := range h.list {
		if strings.ToLower(hd.Name) != key {
			filtered = append(filtered, hd)
		}
	}
	h.list = filtered
	h.rebuildIndex()
}

// Len returns the number of headers currently stored.
func (h *Headers) Len() int { return len(h.list) }

// All returns the ordered header list. Callers must not mutate the
// returned slice.
func (h *Headers) All() []Header { return h.list }

func (h *Headers) rebuildIndex() {
	h.index = make(map[string][]int, len(h.list))
	for i, hd := range h.list {
		key := strings.ToLower(hd.Name)
		h.index[key] = append(h.index[key], i)
	}
}
