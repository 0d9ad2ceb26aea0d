package model

// ClusterInfo is the immutable snapshot materialised by the config loader
// (C1). A new snapshot fully replaces the old one; nothing mutates it in
// place once published.
type ClusterInfo struct {
	Version string
	Nodes   []NodeConfig
	Tables  []Table
}

// NodeConfig is one entry of the config file's nodes[] list.
type NodeConfig struct {
	Host string
	Port int
	Role NodeRole
}

func (c *ClusterInfo) TableByName(name string) (*Table, bool) {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i], true
		}
	}
	return nil, false
}
