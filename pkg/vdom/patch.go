package vdom

// PatchOp is the type of patch operation.
type PatchOp uint8

// Patch operation constants.
const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Insert new node
	PatchRemoveNode  PatchOp = 0x05 // Remove node
	PatchReplaceNode PatchOp = 0x06 // Replace node
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// MarshalText lets patch ops serialize as their names in JSON envelopes.
func (op PatchOp) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// Patch is a single mutation addressed by child-index path from the root.
// An empty path addresses the root node itself.
type Patch struct {
	Op    PatchOp `json:"op"`
	Path  []int   `json:"path"`
	Name  string  `json:"name,omitempty"`  // Attribute name for SetAttr/RemoveAttr
	Value string  `json:"value,omitempty"` // Text or attribute value
	HTML  string  `json:"html,omitempty"`  // Serialized node for Insert/Replace
}

// PatchSet is the minimal diff between two successive snapshots.
type PatchSet []Patch
