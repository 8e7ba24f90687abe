package campaign

import "encoding/json"

// NodeSet selects the simulation nodes an event applies to. The zero value
// selects all nodes.
type NodeSet struct {
	ids []int
}

// AllNodes selects every node.
func AllNodes() NodeSet { return NodeSet{} }

// Nodes selects an explicit node-id list; an empty list selects all nodes.
func Nodes(ids ...int) NodeSet {
	if len(ids) == 0 {
		return NodeSet{}
	}
	return NodeSet{ids: append([]int(nil), ids...)}
}

// All reports whether every node is selected.
func (n NodeSet) All() bool { return len(n.ids) == 0 }

// IDs returns a copy of the explicit node list, nil when all nodes are selected.
func (n NodeSet) IDs() []int {
	if n.All() {
		return nil
	}
	return append([]int(nil), n.ids...)
}

func (n NodeSet) MarshalJSON() ([]byte, error) {
	if n.All() {
		return json.Marshal(map[string]any{"class": "NodeSetAll"})
	}
	return json.Marshal(map[string]any{"class": "NodeSetNodeList", "Node_List": n.ids})
}
