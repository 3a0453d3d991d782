package game

// RenderSink receives opaque scene-graph requests from the engine. The core
// owns only lightweight entity records keyed by stable IDs; the rendering
// collaborator maps node IDs to whatever visuals it likes and is never
// queried back for gameplay decisions.
type RenderSink interface {
	// NodeAdded announces a new entity node. kind is one of "zombie",
	// "projectile", "pickup", "avatar".
	NodeAdded(nodeID, kind string)
	// NodeRemoved announces an entity node leaving the scene.
	NodeRemoved(nodeID string)
	// PartDetached announces a dismembered sub-part to hide/detach.
	PartDetached(ownerNodeID, partNodeID string, part PartName)
}

// NopSink discards all render requests. Used in tests and headless runs.
type NopSink struct{}

func (NopSink) NodeAdded(nodeID, kind string)                            {}
func (NopSink) NodeRemoved(nodeID string)                                {}
func (NopSink) PartDetached(ownerNodeID, partNodeID string, p PartName)  {}
