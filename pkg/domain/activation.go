package domain

// Activation is the derived "lit" state of every stage and edge.
type Activation struct {
	Stages map[string]bool `json:"stages"`
	Edges  map[string]bool `json:"edges"`
}

// StageActive reports whether the stage with the given id is active.
func (a Activation) StageActive(id string) bool {
	return a.Stages[id]
}

// EdgeActive reports whether the edge is active.
func (a Activation) EdgeActive(e Edge) bool {
	return a.Edges[e.ID()]
}
