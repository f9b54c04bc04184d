package layout

import "github.com/opsdeck/sopgraph/pkg/graph"

// Arrange recomputes positions for the whole graph.
//
// Nodes are grouped into levels with a breadth-first traversal seeded from
// every node without a parent, so a well-formed graph levels out from its
// root and a malformed multi-root graph is laid out as-is with all entry
// nodes on the top row. Each node's level is fixed on first visit.
//
// Every level becomes one horizontally centered row:
//
//	y = RootY + level*RowGap
//	x = RootX + i*ColumnGap - (count-1)*ColumnGap/2
//
// with i following visit order. Arrange is deterministic and idempotent:
// positions depend only on graph structure.
//
// Cyclic graphs terminate because revisits are ignored. Nodes unreachable
// from any entry node, such as a detached cycle, keep their positions.
// An empty graph is a no-op.
func Arrange(g *graph.Graph) {
	for level, row := range Levels(g) {
		count := len(row)
		for i, id := range row {
			n, ok := g.Node(id)
			if !ok {
				continue
			}
			n.Position = graph.Point{
				X: graph.RootX + float64(i)*graph.ColumnGap - float64(count-1)*graph.ColumnGap/2,
				Y: graph.RootY + float64(level)*graph.RowGap,
			}
		}
	}
}

// Levels returns node IDs grouped by breadth-first level, seeded from every
// node without a parent. Within a level, IDs appear in visit order. Nodes
// unreachable from any seed are absent.
func Levels(g *graph.Graph) [][]string {
	type item struct {
		id    string
		level int
	}

	visited := make(map[string]bool, g.NodeCount())
	queue := make([]item, 0, g.NodeCount())
	for _, n := range g.Sources() {
		visited[n.ID] = true
		queue = append(queue, item{id: n.ID})
	}

	var levels [][]string
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for len(levels) <= curr.level {
			levels = append(levels, nil)
		}
		levels[curr.level] = append(levels[curr.level], curr.id)

		for _, child := range g.Children(curr.id) {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, item{id: child, level: curr.level + 1})
			}
		}
	}
	return levels
}

// ChildPoint returns the position for a new child of a parent that already
// has childCount children. The child lands one RowGap below the parent. The
// first child sits directly underneath; later children fan out alternately
// left and right at growing distances:
//
//	childCount 0 → dx 0
//	childCount 1 → dx -ColumnGap
//	childCount 2 → dx +ColumnGap
//	childCount 3 → dx -2*ColumnGap
//	childCount 4 → dx +2*ColumnGap
//
// Only the new child is placed; existing siblings stay where they are. Use
// [Arrange] to rebalance the whole canvas afterwards.
func ChildPoint(parent graph.Point, childCount int) graph.Point {
	return graph.Point{
		X: parent.X + childOffset(childCount),
		Y: parent.Y + graph.RowGap,
	}
}

func childOffset(childCount int) float64 {
	if childCount == 0 {
		return 0
	}
	spread := float64((childCount-1)/2+1) * graph.ColumnGap
	if childCount%2 == 1 {
		return -spread
	}
	return spread
}
