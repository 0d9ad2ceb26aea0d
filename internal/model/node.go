package model

import "fmt"

// NodeRole mirrors proto.NodeRole in the teacher: a small closed set of
// roles a process in the fleet can carry.
type NodeRole int

const (
	NodeRoleUnknown NodeRole = iota
	NodeRoleServer
	NodeRoleNode
)

func (r NodeRole) String() string {
	switch r {
	case NodeRoleServer:
		return "server"
	case NodeRoleNode:
		return "node"
	default:
		return "unknown"
	}
}

// NodeID is the stable identity of a fleet member: (host, port).
type NodeID struct {
	Host string
	Port int
}

func (id NodeID) String() string {
	return fmt.Sprintf("%s:%d", id.Host, id.Port)
}

// Less implements the tie-break order used by the assignment policy
// (lexicographic host, then port).
func (id NodeID) Less(other NodeID) bool {
	if id.Host != other.Host {
		return id.Host < other.Host
	}
	return id.Port < other.Port
}

// Node is the coordinator's view of one fleet member.
type Node struct {
	ID     NodeID
	Role   NodeRole
	Active bool

	// SizeBytes is the coordinator's current estimate of resident bytes,
	// reset from inventory each tick rather than accumulated (invariant 4).
	SizeBytes int64

	// ConsecutiveFailures counts back-to-back failed health probes; two
	// demotes the node to inactive, one success reinstates it (§4.4).
	ConsecutiveFailures int
}

func (n *Node) String() string {
	return n.ID.String()
}
