package cart

// Storage is the persistence port the cart writes through. In the browser
// build this is backed by localStorage; tests and server-side rendering use
// MemStorage. Values survive reloads only as far as the backing store does;
// there is no server mirror.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

type MemStorage struct {
	values map[string]string
}

func NewMemStorage() *MemStorage {
	return &MemStorage{values: make(map[string]string)}
}

func (m *MemStorage) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *MemStorage) Set(key, value string) {
	m.values[key] = value
}

func (m *MemStorage) Remove(key string) {
	delete(m.values, key)
}
