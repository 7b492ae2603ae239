package grid

import "errors"

// Operation names accepted in Op.Name.
const (
	OpAddRow              = "addRow"
	OpAddColumn           = "addColumn"
	OpDeleteRow           = "deleteRow"
	OpDeleteColumn        = "deleteColumn"
	OpTranspose           = "transpose"
	OpSortByColumn        = "sortByColumn"
	OpRemoveEmptyRows     = "removeEmptyRows"
	OpRemoveDuplicateRows = "removeDuplicateRows"
	OpSearchReplace       = "searchReplace"
	OpUpdateCell          = "updateCell"
)

// Op describes one edit so that outer layers (MCP tools, HTTP, CLI flags) can
// request edits as data. Index is the row or column the op targets; Column and
// Value are only read by updateCell.
type Op struct {
	Name        string `json:"op" yaml:"op"`
	Index       int    `json:"index,omitempty" yaml:"index,omitempty"`
	Column      int    `json:"column,omitempty" yaml:"column,omitempty"`
	Value       string `json:"value,omitempty" yaml:"value,omitempty"`
	Query       string `json:"query,omitempty" yaml:"query,omitempty"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	Regex       bool   `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// OpNames lists every supported operation name.
func OpNames() []string {
	return []string{
		OpAddRow, OpAddColumn, OpDeleteRow, OpDeleteColumn, OpTranspose,
		OpSortByColumn, OpRemoveEmptyRows, OpRemoveDuplicateRows,
		OpSearchReplace, OpUpdateCell,
	}
}

// Apply runs op against g.
func (op Op) Apply(g Grid) (Grid, error) {
	switch op.Name {
	case OpAddRow:
		return g.AddRow(), nil
	case OpAddColumn:
		return g.AddColumn(), nil
	case OpDeleteRow:
		return g.DeleteRow(op.Index), nil
	case OpDeleteColumn:
		return g.DeleteColumn(op.Index), nil
	case OpTranspose:
		return g.Transpose(), nil
	case OpSortByColumn:
		return g.SortByColumn(op.Index), nil
	case OpRemoveEmptyRows:
		return g.RemoveEmptyRows(), nil
	case OpRemoveDuplicateRows:
		return g.RemoveDuplicateRows(), nil
	case OpSearchReplace:
		out, err := g.SearchReplace(op.Query, op.Replacement, op.Regex)
		if err != nil {
			return g, &OpError{Name: op.Name, Err: err}
		}
		return out, nil
	case OpUpdateCell:
		return g.UpdateCell(op.Index, op.Column, op.Value), nil
	default:
		return g, &OpError{Name: op.Name, Err: ErrUnknownOp}
	}
}

// Apply runs ops against g in order. It is all or nothing: if any op fails the
// original g is returned together with that error.
func Apply(g Grid, ops ...Op) (Grid, error) {
	cur := g
	for _, op := range ops {
		next, err := op.Apply(cur)
		if err != nil {
			return g, err
		}
		cur = next
	}
	return cur, nil
}

// IsUserError reports whether err was caused by caller input (a bad pattern,
// an unknown op or unreadable tabular input) rather than an internal failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidPattern) || errors.Is(err, ErrUnknownOp) || errors.Is(err, ErrIngest)
}
