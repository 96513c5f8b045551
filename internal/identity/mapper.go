package identity

// Known describes an already-stored episode the mapper can match against.
type Known struct {
	ID     string
	Number *int
	URL    string
	Title  string
}

// Mapper re-identifies incoming episodes against episodes already collected,
// so repeated runs keep stable ids. Matching is tried in order of reliability:
// episode number, then URL, then normalized title.
type Mapper struct {
	byNumber map[int]string
	byURL    map[string]string
	byTitle  map[string]string
}

// NewMapper builds a mapper over the known episode set.
func NewMapper(known []Known) *Mapper {
	m := &Mapper{
		byNumber: make(map[int]string),
		byURL:    make(map[string]string),
		byTitle:  make(map[string]string),
	}
	for _, k := range known {
		if k.Number != nil {
			m.byNumber[*k.Number] = k.ID
		}
		if k.URL != "" {
			m.byURL[k.URL] = k.ID
		}
		if k.Title != "" {
			m.byTitle[NormalizeTitle(k.Title)] = k.ID
		}
	}
	return m
}

// Resolve returns the existing episode id for an incoming episode, or ""
// when the episode has not been seen before.
func (m *Mapper) Resolve(number *int, url, title string) string {
	if number != nil {
		if id, ok := m.byNumber[*number]; ok {
			return id
		}
	}
	if url != "" {
		if id, ok := m.byURL[url]; ok {
			return id
		}
	}
	if title != "" {
		if id, ok := m.byTitle[NormalizeTitle(title)]; ok {
			return id
		}
	}
	return ""
}
