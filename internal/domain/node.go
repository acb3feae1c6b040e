package domain

import "github.com/google/uuid"

// NodeID identifies one running process on the cluster bus. It is created
// once at startup and passed explicitly to the components that need it.
type NodeID string

// NewNodeID returns a random node identity.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

func (n NodeID) String() string {
	return string(n)
}
