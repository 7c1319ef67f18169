package state

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
)

var namePattern, _ = regexp.Compile("^[0-9a-z._-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func NodeConfigValidator(node *LocalCfg) error {
	err := NameValidator(string(node.Id))
	if err != nil {
		return err
	}
	if node.HoldInterval < 0 {
		return fmt.Errorf("hold_interval must not be negative")
	}
	if node.ProbeDelay < 0 {
		return fmt.Errorf("probe_delay must not be negative")
	}
	seen := make(map[Pair[NodeId, string]]struct{})
	for _, h := range node.Health {
		if h.LinkHealth == nil {
			return fmt.Errorf("health monitor has an unknown type")
		}
		if err := NameValidator(string(h.GetNeighbour())); err != nil {
			return err
		}
		if err := NameValidator(h.GetIfName()); err != nil {
			return err
		}
		key := Pair[NodeId, string]{h.GetNeighbour(), h.GetIfName()}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate health monitor for %s%%%s", h.GetNeighbour(), h.GetIfName())
		}
		seen[key] = struct{}{}
	}
	return nil
}

func CentralConfigValidator(cfg *CentralCfg) error {
	for _, node := range cfg.Nodes {
		err := NameValidator(string(node.Id))
		if err != nil {
			return err
		}
	}
	seen := make(map[NodeId]struct{})
	for _, node := range cfg.Nodes {
		if _, ok := seen[node.Id]; ok {
			return fmt.Errorf("duplicate node: %s", node.Id)
		}
		seen[node.Id] = struct{}{}
	}
	for _, node := range cfg.Nodes {
		claims := make(map[Pair[NodeId, string]]struct{})
		for _, adj := range node.Adjacencies {
			if err := NameValidator(string(adj.Neighbour)); err != nil {
				return err
			}
			if err := NameValidator(adj.IfName); err != nil {
				return err
			}
			if adj.Neighbour == node.Id {
				return fmt.Errorf("node %s claims an adjacency to itself", node.Id)
			}
			if _, ok := seen[adj.Neighbour]; !ok {
				return fmt.Errorf("node %s claims an adjacency to undefined node %s", node.Id, adj.Neighbour)
			}
			key := Pair[NodeId, string]{adj.Neighbour, adj.IfName}
			if _, ok := claims[key]; ok {
				return fmt.Errorf("node %s has duplicate adjacency %s%%%s", node.Id, adj.Neighbour, adj.IfName)
			}
			claims[key] = struct{}{}
		}
	}
	return nil
}
