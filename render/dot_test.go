package render

import (
	"bytes"
	"testing"

	"github.com/ar90n/eiforest/itree"
	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseFormat(t *testing.T) {
	for name, want := range map[string]graphviz.Format{
		"dot": graphviz.XDOT,
		"SVG": graphviz.SVG,
		"png": graphviz.PNG,
		"jpg": graphviz.JPG,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("bmp")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func Test_Tree(t *testing.T) {
	tree := itree.Tree[float64]{
		Nodes: []itree.Node[float64]{
			{
				Hyperplane: itree.Hyperplane[float64]{Normal: []float64{0.5, 0.0}, Intercept: []float64{1.0, 2.0}},
				Size:       3,
				Left:       1,
				Right:      2,
			},
			{Size: 2},
			{Size: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Tree(tree, graphviz.XDOT, &buf))
	out := buf.String()
	assert.Contains(t, out, "n0")
	assert.Contains(t, out, "n2")
	assert.Contains(t, out, "size=2")
}

func Test_TreeEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Tree(itree.Tree[float32]{}, graphviz.XDOT, &buf), itree.ErrMalformedTree)
}

func Test_NodeLabel(t *testing.T) {
	leaf := itree.Node[float32]{Size: 4}
	assert.Equal(t, "size=4", nodeLabel(leaf))

	internal := itree.Node[float32]{
		Hyperplane: itree.Hyperplane[float32]{Normal: []float32{0, 1.5, 0}, Intercept: []float32{0, 0, 0}},
		Size:       7,
		Left:       1,
		Right:      2,
	}
	assert.Equal(t, "size=7\\nn1=1.5", nodeLabel(internal))
}
