package expr

// node is one vertex of a compiled expression tree.
type node interface {
	eval(x float64) (float64, error)
}

type numNode float64

func (n numNode) eval(float64) (float64, error) { return float64(n), nil }

type varNode struct{}

func (varNode) eval(x float64) (float64, error) { return x, nil }

type negNode struct {
	operand node
}

func (n negNode) eval(x float64) (float64, error) {
	v, err := n.operand.eval(x)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

type binaryNode struct {
	op          string
	fn          BinaryFunc
	left, right node
}

func (n binaryNode) eval(x float64) (float64, error) {
	a, err := n.left.eval(x)
	if err != nil {
		return 0, err
	}
	b, err := n.right.eval(x)
	if err != nil {
		return 0, err
	}
	return n.fn(a, b), nil
}

type callNode struct {
	name string
	fn   Function
	args []node
	pos  int
}

func (n callNode) eval(x float64) (float64, error) {
	vals := make([]float64, len(n.args))
	for i, arg := range n.args {
		v, err := arg.eval(x)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	v, err := n.fn.Call(vals)
	if err != nil {
		return 0, &Error{Kind: DomainError, Pos: n.pos, Msg: err.Error()}
	}
	return v, nil
}
