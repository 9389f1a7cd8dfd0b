package prompt

import "sync"

// Store owns the current State and is its only writer. It is safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore returns a Store holding the initial state.
func NewStore() *Store {
	return &Store{state: Initial()}
}

// NewStoreFrom returns a Store holding state.
func NewStoreFrom(state State) *Store {
	return &Store{state: state}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Shape returns a copy of tool's current shape.
func (s *Store) Shape(tool ToolID) (Shape, bool) {
	return s.Snapshot().Shape(tool)
}

// apply replaces the state with the result of op, unless op fails, and
// returns tool's resulting shape.
func (s *Store) apply(tool ToolID, op func(State) (State, error)) (Shape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := op(s.state)
	if err != nil {
		return nil, err
	}
	s.state = next

	shape, _ := next.Shape(tool)
	return shape, nil
}

func (s *Store) Update(tool ToolID, field Field, value any) (Shape, error) {
	return s.apply(tool, func(state State) (State, error) {
		return state.Update(tool, field, value)
	})
}

func (s *Store) Clear(tool ToolID) (Shape, error) {
	return s.apply(tool, func(state State) (State, error) {
		if _, err := state.lookup(tool); err != nil {
			return state, err
		}
		return state.Clear(tool), nil
	})
}

func (s *Store) AddModifier(tool ToolID, tag string) (Shape, error) {
	return s.apply(tool, func(state State) (State, error) {
		return state.AddModifier(tool, tag)
	})
}

func (s *Store) DeleteEnhancer(tool ToolID, tag string) (Shape, error) {
	return s.apply(tool, func(state State) (State, error) {
		return state.DeleteEnhancer(tool, tag)
	})
}

func (s *Store) EditEnhancer(tool ToolID, oldTag, newTag string) (Shape, error) {
	return s.apply(tool, func(state State) (State, error) {
		return state.EditEnhancer(tool, oldTag, newTag)
	})
}

// SyncEnhancerAcrossBuilders applies the sync and returns the whole state.
func (s *Store) SyncEnhancerAcrossBuilders(tag string, add bool) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.SyncEnhancerAcrossBuilders(tag, add)
	return s.state
}

// AddNode adds a comfy node from a catalog template and returns it.
func (s *Store) AddNode(templateKey string) (GraphNode, error) {
	var added GraphNode
	_, err := s.apply(Comfy, func(state State) (State, error) {
		next, node, err := state.AddNode(templateKey)
		added = node
		return next, err
	})
	return added, err
}

func (s *Store) RemoveNode(id int) (Shape, error) {
	return s.apply(Comfy, func(state State) (State, error) {
		return state.RemoveNode(id)
	})
}

func (s *Store) SetNodeField(id int, field string, value any) (Shape, error) {
	return s.apply(Comfy, func(state State) (State, error) {
		return state.SetNodeField(id, field, value)
	})
}

func (s *Store) ImportNodes(nodes []GraphNode) Shape {
	shape, _ := s.apply(Comfy, func(state State) (State, error) {
		return state.ImportNodes(nodes), nil
	})
	return shape
}

func (s *Store) SetParam(name string, value any) (Shape, error) {
	return s.apply(A1111, func(state State) (State, error) {
		return state.SetParam(name, value)
	})
}
