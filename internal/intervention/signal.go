package intervention

// NodeSelection chooses which neighbouring nodes a cross-node broadcast reaches.
type NodeSelection string

const (
	DistanceOnly         NodeSelection = "DISTANCE_ONLY"
	MigrationNodesOnly   NodeSelection = "MIGRATION_NODES_ONLY"
	DistanceAndMigration NodeSelection = "DISTANCE_AND_MIGRATION"
)

// BroadcastEvent emits a named signal for the receiving individual.
type BroadcastEvent struct {
	Event string
}

func (*BroadcastEvent) Class() string { return "BroadcastEvent" }
func (*BroadcastEvent) sealed()       {}

func (b *BroadcastEvent) Params() map[string]any {
	return map[string]any{"Broadcast_Event": b.Event}
}

func (b *BroadcastEvent) MarshalJSON() ([]byte, error) {
	return encode(b.Class(), b.Params(), nil)
}

// BroadcastToNodes emits a named signal to every individual in the nodes
// selected around the receiving individual's node. A zero radius with
// DistanceOnly and IncludeMyNode reaches the individual's own node only.
type BroadcastToNodes struct {
	Event         string
	MaxDistanceKm float64
	Selection     NodeSelection
	IncludeMyNode bool
}

func (*BroadcastToNodes) Class() string { return "BroadcastEventToOtherNodes" }
func (*BroadcastToNodes) sealed()       {}

func (b *BroadcastToNodes) Params() map[string]any {
	return map[string]any{
		"Event_Trigger":                  b.Event,
		"Max_Distance_To_Other_Nodes_Km": b.MaxDistanceKm,
		"Node_Selection_Type":            string(b.Selection),
		"Include_My_Node":                flag(b.IncludeMyNode),
	}
}

func (b *BroadcastToNodes) MarshalJSON() ([]byte, error) {
	return encode(b.Class(), b.Params(), nil)
}
