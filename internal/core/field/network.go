package field

import (
	"errors"
	"fmt"

	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

// ErrBadNetwork is returned when a waypoint network definition is inconsistent.
var ErrBadNetwork = errors.New("invalid waypoint network")

// PadKind classifies the resource pad under a waypoint.
type PadKind uint8

const (
	PadNone PadKind = iota
	PadMinor
	PadMajor
)

func (k PadKind) String() string {
	switch k {
	case PadMinor:
		return "minor"
	case PadMajor:
		return "major"
	default:
		return "none"
	}
}

// Node is a fixed waypoint of the route graph.
type Node struct {
	Index     int
	Location  physics.Vec3
	Pad       int // resource pad identifier, -1 when the node has no pad
	Kind      PadKind
	Neighbors []int
}

// HasPad reports whether the node sits on a resource pad.
func (n Node) HasPad() bool { return n.Pad >= 0 }

// Network is the immutable undirected waypoint graph.
type Network struct {
	nodes []Node
}

// NodeSpec is the serialisable form of a waypoint.
type NodeSpec struct {
	Location physics.Vec3 `json:"location" yaml:"location"`
	Pad      *int         `json:"pad,omitempty" yaml:"pad,omitempty"`
	Kind     string       `json:"kind,omitempty" yaml:"kind,omitempty"` // none, minor, major
}

// NetworkSpec is the serialisable form of a Network.
type NetworkSpec struct {
	Nodes []NodeSpec `json:"nodes" yaml:"nodes"`
	Edges [][2]int   `json:"edges" yaml:"edges"`
}

// NewNetwork builds a Network from a spec, rejecting dangling or self edges.
// Duplicate edges are merged.
func NewNetwork(spec NetworkSpec) (*Network, error) {
	if len(spec.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrBadNetwork)
	}
	nodes := make([]Node, len(spec.Nodes))
	for i, ns := range spec.Nodes {
		kind, err := parsePadKind(ns.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		pad := -1
		if ns.Pad != nil {
			pad = *ns.Pad
		}
		if pad < 0 {
			kind = PadNone
		} else if kind == PadNone {
			kind = PadMinor
		}
		nodes[i] = Node{Index: i, Location: ns.Location, Pad: pad, Kind: kind}
	}

	seen := make(map[[2]int]struct{}, len(spec.Edges))
	for _, e := range spec.Edges {
		u, v := e[0], e[1]
		if u < 0 || v < 0 || u >= len(nodes) || v >= len(nodes) {
			return nil, fmt.Errorf("%w: edge %d-%d references a missing node", ErrBadNetwork, u, v)
		}
		if u == v {
			return nil, fmt.Errorf("%w: self edge on node %d", ErrBadNetwork, u)
		}
		key := [2]int{min(u, v), max(u, v)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		nodes[u].Neighbors = append(nodes[u].Neighbors, v)
		nodes[v].Neighbors = append(nodes[v].Neighbors, u)
	}
	return &Network{nodes: nodes}, nil
}

func parsePadKind(s string) (PadKind, error) {
	switch s {
	case "", "none":
		return PadNone, nil
	case "minor", "small":
		return PadMinor, nil
	case "major", "large":
		return PadMajor, nil
	default:
		return PadNone, fmt.Errorf("%w: unknown pad kind %q", ErrBadNetwork, s)
	}
}

// Len returns the number of fixed nodes.
func (n *Network) Len() int { return len(n.nodes) }

// Node returns the node at index i.
func (n *Network) Node(i int) Node { return n.nodes[i] }

// Nodes returns a copy of all nodes.
func (n *Network) Nodes() []Node {
	cp := make([]Node, len(n.nodes))
	copy(cp, n.nodes)
	return cp
}

const padZ = 33

// majorPads are the pad indices of the six large pads in the stock layout.
var majorPads = map[int]bool{3: true, 4: true, 15: true, 18: true, 29: true, 30: true}

var standardLocations = [...][2]float64{
	{0, -4240}, {-1792, -4184}, {1792, -4184}, {-3072, -4096}, {3072, -4096},
	{-940, -3308}, {940, -3308}, {0, -2816}, {-3584, -2484}, {3584, -2484},
	{-1788, -2300}, {1788, -2300}, {-2048, -1036}, {0, -1024}, {2048, -1036},
	{-3584, 0}, {-1024, 0}, {1024, 0}, {3584, 0},
	{-2048, 1036}, {0, 1024}, {2048, 1036}, {-1788, 2300}, {1788, 2300},
	{-3584, 2484}, {3584, 2484}, {0, 2816}, {-940, 3310}, {940, 3308},
	{-3072, 4096}, {3072, 4096}, {-1792, 4184}, {1792, 4184}, {0, 4240},
}

var standardEdges = [][2]int{
	{0, 1}, {0, 2}, {0, 5}, {0, 6}, {0, 7}, {1, 3}, {1, 5}, {2, 4}, {2, 6}, {3, 8},
	{4, 9}, {5, 7}, {5, 10}, {6, 7}, {6, 11}, {7, 10}, {7, 11}, {7, 12}, {7, 13}, {7, 14},
	{8, 10}, {8, 12}, {8, 15}, {9, 11}, {9, 14}, {9, 18}, {10, 12}, {10, 13}, {10, 16},
	{11, 13}, {11, 14}, {11, 17}, {12, 13}, {12, 15}, {12, 16}, {12, 19}, {13, 16},
	{13, 17}, {13, 20}, {14, 13}, {14, 17}, {14, 18}, {14, 21}, {15, 16}, {15, 19},
	{15, 24}, {16, 19}, {16, 20}, {16, 22}, {17, 18}, {17, 20}, {17, 21}, {17, 23},
	{18, 21}, {18, 25}, {19, 20}, {19, 22}, {19, 26}, {19, 24}, {20, 21}, {20, 22},
	{20, 23}, {20, 26}, {21, 23}, {21, 25}, {21, 26}, {22, 24}, {22, 26}, {22, 27},
	{23, 25}, {23, 26}, {23, 28}, {24, 29}, {25, 30}, {26, 27}, {26, 28}, {26, 33},
	{27, 31}, {27, 33}, {28, 32}, {28, 33}, {29, 31}, {30, 32}, {31, 33}, {32, 33},
}

// StandardSpec returns the spec of the stock 34 node pad network.
func StandardSpec() NetworkSpec {
	spec := NetworkSpec{Nodes: make([]NodeSpec, len(standardLocations))}
	for i, loc := range standardLocations {
		pad := i
		kind := "minor"
		if majorPads[i] {
			kind = "major"
		}
		spec.Nodes[i] = NodeSpec{Location: physics.V(loc[0], loc[1], padZ), Pad: &pad, Kind: kind}
	}
	spec.Edges = append(spec.Edges, standardEdges...)
	return spec
}

// StandardNetwork returns the stock 34 node pad network.
func StandardNetwork() *Network {
	n, err := NewNetwork(StandardSpec())
	if err != nil {
		panic(err) // the built-in table is static
	}
	return n
}
