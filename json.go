package eiforest

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/ar90n/eiforest/itree"
	"github.com/ar90n/eiforest/linalg"
	"github.com/cockroachdb/errors"
)

// The JSON form mirrors the model: a forest holds its normalization constant and its trees, a
// tree holds its root and a node is either {"External": …} or {"Internal": …}.
type forestJSON struct {
	AvgPathLengthC float64    `json:"avgPathLengthC"`
	Trees          []treeJSON `json:"trees"`
}

type treeJSON struct {
	Root *nodeJSON `json:"root"`
}

type nodeJSON struct {
	External *externalJSON `json:"External,omitempty"`
	Internal *internalJSON `json:"Internal,omitempty"`
}

type externalJSON struct {
	NumSamples uint `json:"numSamples"`
}

type internalJSON struct {
	Left  *nodeJSON       `json:"left"`
	Right *nodeJSON       `json:"right"`
	N     json.RawMessage `json:"n"`
	P     json.RawMessage `json:"p"`
}

func (f Forest[T]) MarshalJSON() ([]byte, error) {
	out := forestJSON{
		AvgPathLengthC: f.AvgPathLengthC,
		Trees:          make([]treeJSON, len(f.Trees)),
	}

	for i := range f.Trees {
		root, err := encodeNode(f.Trees[i], 0)
		if err != nil {
			return nil, errors.Wrapf(err, "encode tree %d", i)
		}
		out.Trees[i].Root = root
	}

	return json.Marshal(out)
}

func (f *Forest[T]) UnmarshalJSON(data []byte) error {
	var in forestJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.Wrap(err, "decode forest")
	}

	decoded := Forest[T]{
		AvgPathLengthC: in.AvgPathLengthC,
		Trees:          make([]itree.Tree[T], len(in.Trees)),
	}
	dec := nodeDecoder[T]{}
	for i, tree := range in.Trees {
		if tree.Root == nil {
			return errors.Wrapf(ErrInvalidModel, "tree %d has no root", i)
		}
		if _, err := dec.decode(&decoded.Trees[i], tree.Root); err != nil {
			return errors.Wrapf(err, "decode tree %d", i)
		}
	}
	decoded.Dim = dec.dim

	if err := decoded.validate(); err != nil {
		return err
	}

	*f = decoded
	return nil
}

func encodeNode[T linalg.Float](tree itree.Tree[T], idx uint) (*nodeJSON, error) {
	node := tree.Nodes[idx]
	if node.IsLeaf() {
		return &nodeJSON{External: &externalJSON{NumSamples: node.Size}}, nil
	}

	left, err := encodeNode(tree, node.Left)
	if err != nil {
		return nil, err
	}
	right, err := encodeNode(tree, node.Right)
	if err != nil {
		return nil, err
	}
	n, err := encodeVector(node.Hyperplane.Normal)
	if err != nil {
		return nil, err
	}
	p, err := encodeVector(node.Hyperplane.Intercept)
	if err != nil {
		return nil, err
	}

	return &nodeJSON{
		Internal: &internalJSON{
			Left:  left,
			Right: right,
			N:     n,
			P:     p,
		},
	}, nil
}

// nodeDecoder rebuilds the node arena in the same preorder the tree builder produces and
// pins the dimension to the length of the first vector it meets.
type nodeDecoder[T linalg.Float] struct {
	dim uint
}

func (d *nodeDecoder[T]) decode(tree *itree.Tree[T], in *nodeJSON) (uint, error) {
	idx := uint(len(tree.Nodes))
	tree.Nodes = append(tree.Nodes, itree.Node[T]{})

	switch {
	case in.External != nil && in.Internal == nil:
		tree.Nodes[idx].Size = in.External.NumSamples
		return idx, nil
	case in.Internal != nil && in.External == nil:
	default:
		return 0, errors.Wrapf(ErrInvalidModel, "node %d must be either External or Internal", idx)
	}

	internal := in.Internal
	if internal.Left == nil || internal.Right == nil {
		return 0, errors.Wrapf(ErrInvalidModel, "internal node %d lacks a child", idx)
	}

	normal, err := d.vector(internal.N)
	if err != nil {
		return 0, errors.Wrapf(err, "node %d normal", idx)
	}
	intercept, err := d.vector(internal.P)
	if err != nil {
		return 0, errors.Wrapf(err, "node %d intercept", idx)
	}

	left, err := d.decode(tree, internal.Left)
	if err != nil {
		return 0, err
	}
	right, err := d.decode(tree, internal.Right)
	if err != nil {
		return 0, err
	}

	tree.Nodes[idx] = itree.Node[T]{
		Hyperplane: itree.Hyperplane[T]{
			Normal:    normal,
			Intercept: intercept,
		},
		Size:  tree.Nodes[left].Size + tree.Nodes[right].Size,
		Left:  left,
		Right: right,
	}
	return idx, nil
}

func (d *nodeDecoder[T]) vector(raw json.RawMessage) ([]T, error) {
	if d.dim == 0 {
		var probe []json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, errors.Wrap(ErrInvalidModel, err.Error())
		}
		if len(probe) == 0 {
			return nil, errors.Wrap(ErrInvalidFeatureDim, "empty vector")
		}
		d.dim = uint(len(probe))
	}

	return decodeVector[T](raw, d.dim)
}

// encodeVector writes v element by element with the shortest representation that reads back
// to the same value of T.
func encodeVector[T linalg.Float](v []T) (json.RawMessage, error) {
	bits := linalg.BitSize[T]()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.Newf("element %d is not finite", i)
		}
		if 0 < i {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
	}
	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// decodeVector reads a JSON array of exactly dim numbers.
func decodeVector[T linalg.Float](raw json.RawMessage, dim uint) ([]T, error) {
	var elements []json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&elements); err != nil {
		return nil, errors.Wrap(ErrInvalidModel, err.Error())
	}
	if uint(len(elements)) != dim {
		return nil, errors.Wrapf(ErrInvalidFeatureDim, "vector has %d elements, want %d", len(elements), dim)
	}

	bits := linalg.BitSize[T]()
	v := make([]T, dim)
	for i, e := range elements {
		x, err := strconv.ParseFloat(e.String(), bits)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidModel, "element %d: %v", i, err)
		}
		v[i] = T(x)
	}

	return v, nil
}
