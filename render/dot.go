// Package render draws isolation trees with graphviz.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ar90n/eiforest/itree"
	"github.com/ar90n/eiforest/linalg"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

var ErrUnknownFormat = errors.New("unknown render format")

// ParseFormat maps a file extension like name (dot, svg, png, jpg) to a graphviz format.
func ParseFormat(name string) (graphviz.Format, error) {
	switch strings.ToLower(name) {
	case "dot", "xdot":
		return graphviz.XDOT, nil
	case "svg":
		return graphviz.SVG, nil
	case "png":
		return graphviz.PNG, nil
	case "jpg", "jpeg":
		return graphviz.JPG, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", name)
	}
}

// Tree writes tree to w. Internal nodes are labeled with their sample count and the non-zero
// coordinates of the normal, leaves with their sample count. Edges are labeled by direction.
func Tree[T linalg.Float](tree itree.Tree[T], format graphviz.Format, w io.Writer) (err error) {
	if len(tree.Nodes) == 0 {
		return errors.Wrap(itree.ErrMalformedTree, "empty tree")
	}

	g := graphviz.New()
	graph, err := g.Graph()
	if err != nil {
		return errors.Wrap(err, "create graph")
	}
	defer func() {
		if cerr := graph.Close(); cerr != nil && err == nil {
			err = cerr
		}
		g.Close()
	}()

	gn := make([]*cgraph.Node, len(tree.Nodes))
	for i, node := range tree.Nodes {
		gn[i], err = graph.CreateNode(fmt.Sprintf("n%d", i))
		if err != nil {
			return errors.Wrapf(err, "create node %d", i)
		}
		gn[i].SetLabel(nodeLabel(node))
		if node.IsLeaf() {
			gn[i].SetShape(cgraph.BoxShape)
		}
	}

	for i, node := range tree.Nodes {
		if node.IsLeaf() {
			continue
		}
		children := [...]struct {
			idx uint
			dir itree.Direction
		}{{node.Left, itree.Left}, {node.Right, itree.Right}}
		for _, child := range children {
			e, err := graph.CreateEdge(fmt.Sprintf("e%d_%d", i, child.idx), gn[i], gn[child.idx])
			if err != nil {
				return errors.Wrapf(err, "create edge %d -> %d", i, child.idx)
			}
			e.SetLabel(child.dir.String())
		}
	}

	if err := g.Render(graph, format, w); err != nil {
		return errors.Wrap(err, "render tree")
	}
	return nil
}

func nodeLabel[T linalg.Float](node itree.Node[T]) string {
	if node.IsLeaf() {
		return fmt.Sprintf("size=%d", node.Size)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "size=%d", node.Size)
	for j, n := range node.Hyperplane.Normal {
		if n == 0 {
			continue
		}
		sb.WriteString("\\n")
		sb.WriteString("n")
		sb.WriteString(strconv.Itoa(j))
		sb.WriteString("=")
		sb.WriteString(strconv.FormatFloat(float64(n), 'g', 4, 64))
	}
	return sb.String()
}
