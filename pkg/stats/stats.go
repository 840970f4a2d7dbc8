// Package stats summarizes the shape of a forest: size, depth distribution,
// branching, and which nodes sit on the most root-to-leaf routes.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/treekit/pkg/model"
	"github.com/vanderheijden86/treekit/pkg/tree"
)

// HubNodeLimit is the largest forest ranked with exact betweenness. Larger
// forests are ranked from a sample of pivot nodes.
// Betweenness is O(V*E); on a tree that is quadratic in node count.
const HubNodeLimit = 5000

// hubSeed fixes pivot sampling so a file always yields the same ranking.
const hubSeed = 1

// Hub is a node ranked by betweenness centrality.
type Hub struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Summary describes a forest.
type Summary struct {
	Nodes    int `json:"nodes"`
	Roots    int `json:"roots"`
	Leaves   int `json:"leaves"`
	Disabled int `json:"disabled"`

	MaxDepth    int     `json:"max_depth"`
	DepthMean   float64 `json:"depth_mean"`
	DepthStdDev float64 `json:"depth_stddev"`
	// DepthCounts[d] is the number of nodes at depth d
	DepthCounts []int `json:"depth_counts"`

	// Branching is measured over internal nodes only
	BranchingMean float64 `json:"branching_mean"`
	BranchingMax  int     `json:"branching_max"`

	Hubs []Hub `json:"hubs,omitempty"`
	// HubSampleSize is the pivot count when Hubs were estimated, else 0
	HubSampleSize int `json:"hub_sample_size,omitempty"`
}

// Compute summarizes roots and ranks up to topHubs nodes by betweenness.
// A topHubs of zero skips the ranking.
func Compute(roots []model.TreeNode, topHubs int) Summary {
	s := Summary{Roots: len(roots)}

	var (
		depths    []float64
		branching []float64
		nodes     []model.TreeNode
		g         = simple.NewUndirectedGraph()
	)

	var walk func(list []model.TreeNode, depth int, parent int64)
	walk = func(list []model.TreeNode, depth int, parent int64) {
		for _, n := range list {
			id := int64(len(nodes))
			nodes = append(nodes, n)
			g.AddNode(simple.Node(id))
			if parent >= 0 {
				g.SetEdge(simple.Edge{F: simple.Node(parent), T: simple.Node(id)})
			}

			depths = append(depths, float64(depth))
			for len(s.DepthCounts) <= depth {
				s.DepthCounts = append(s.DepthCounts, 0)
			}
			s.DepthCounts[depth]++
			if depth > s.MaxDepth {
				s.MaxDepth = depth
			}
			if n.Disabled {
				s.Disabled++
			}
			if n.IsLeaf() {
				s.Leaves++
			} else {
				branching = append(branching, float64(len(n.Children)))
				s.BranchingMax = max(s.BranchingMax, len(n.Children))
			}
			walk(n.Children, depth+1, id)
		}
	}
	walk(roots, 0, -1)

	s.Nodes = len(nodes)
	s.DepthMean, s.DepthStdDev = meanStdDev(depths)
	if len(branching) > 0 {
		s.BranchingMean = stat.Mean(branching, nil)
	}

	if topHubs > 0 && s.Nodes > 0 {
		var scores map[int64]float64
		if s.Nodes > HubNodeLimit {
			s.HubSampleSize = sampleSizeFor(s.Nodes)
			scores = approxBetweenness(g, s.HubSampleSize, hubSeed)
		} else {
			scores = network.Betweenness(g)
		}
		s.Hubs = rankHubs(scores, nodes, topHubs)
	}
	return s
}

func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	mean, std := stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// rankHubs orders by score, then by document order for stable output.
func rankHubs(scores map[int64]float64, nodes []model.TreeNode, limit int) []Hub {
	ids := make([]int64, 0, len(scores))
	for id, score := range scores {
		if score > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}

	hubs := make([]Hub, 0, len(ids))
	for _, id := range ids {
		n := nodes[id]
		hubs = append(hubs, Hub{ID: n.ID, Label: n.DisplayLabel(), Score: scores[id]})
	}
	return hubs
}

// View describes what a controller currently shows.
type View struct {
	Visible  int `json:"visible"`
	Hidden   int `json:"hidden"`
	Expanded int `json:"expanded"`
	Selected int `json:"selected"`
}

// ForController counts the rows and set sizes of c's current state.
func ForController(c *tree.Controller) View {
	visible := len(c.VisibleNodes())
	return View{
		Visible:  visible,
		Hidden:   c.Store().Len() - visible,
		Expanded: len(c.ExpandedIDs()),
		Selected: len(c.SelectedIDs()),
	}
}
