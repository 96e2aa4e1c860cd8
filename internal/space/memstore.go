package space

// MemoryStore is a map-backed PositionStore for headless runs and tests. In
// a rendered deployment the renderer's scene graph implements PositionSource
// instead.
type MemoryStore struct {
	positions map[int]Vec3
}

// NewMemoryStore creates an empty position store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{positions: make(map[int]Vec3)}
}

// Position returns the entity's position, or false if unknown.
func (m *MemoryStore) Position(id int) (Vec3, bool) {
	p, ok := m.positions[id]
	return p, ok
}

// SetPosition places (or moves) an entity.
func (m *MemoryStore) SetPosition(id int, pos Vec3) {
	m.positions[id] = pos
}

// Remove drops an entity from the store.
func (m *MemoryStore) Remove(id int) {
	delete(m.positions, id)
}

// IDs returns all live entity ids.
func (m *MemoryStore) IDs() []int {
	ids := make([]int, 0, len(m.positions))
	for id := range m.positions {
		ids = append(ids, id)
	}
	return ids
}
