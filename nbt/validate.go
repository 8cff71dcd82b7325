package nbt

import (
	"fmt"
)

// Issue codes reported by Validate.
const (
	IssueUnknownType      = "unknown-type"
	IssueEndTag           = "end-tag"
	IssueListMismatch     = "list-element-mismatch"
	IssueNamedListElement = "named-list-element"
	IssueDuplicateKey     = "duplicate-key"
	IssueTooDeep          = "too-deep"
)

// ValidationIssue describes one structural fault found in a tree.
type ValidationIssue struct {
	// Path locates the offending tag, e.g. "inventory[2].id". Empty
	// means the root.
	Path    string
	Code    string
	Message string
}

func (i ValidationIssue) String() string {
	p := i.Path
	if p == "" {
		p = "(root)"
	}
	return fmt.Sprintf("%s: %s: %s", p, i.Code, i.Message)
}

// ValidateOption configures Validate.
type ValidateOption func(*validator)

// WithValidateRegistry sets the registry ids are checked against.
func WithValidateRegistry(reg *TypeRegistry) ValidateOption {
	return func(v *validator) {
		v.registry = reg
	}
}

// WithValidateMaxDepth sets the nesting ceiling checked for.
func WithValidateMaxDepth(n int) ValidateOption {
	return func(v *validator) {
		v.maxDepth = n
	}
}

type validator struct {
	registry *TypeRegistry
	maxDepth int
	issues   []ValidationIssue
}

// Validate walks a tree and reports every structural fault the binary
// writer would reject, without stopping at the first: end tags used as
// values, ids the registry cannot resolve, list elements whose kind
// disagrees with the list, named list elements, duplicate compound
// keys and nesting past the depth ceiling. A nil return means the tree
// is clean.
func Validate(root *Tag, opts ...ValidateOption) []ValidationIssue {
	v := &validator{
		registry: defaultRegistry,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(v)
	}
	if root == nil {
		v.report("", IssueEndTag, "nil tag")
		return v.issues
	}
	v.walk(root, "", 0)
	return v.issues
}

func (v *validator) report(path, code, format string, args ...any) {
	v.issues = append(v.issues, ValidationIssue{
		Path:    path,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) walk(t *Tag, path string, depth int) {
	if t.id == TagEnd {
		v.report(path, IssueEndTag, "end tag used as a value")
		return
	}
	if _, err := v.registry.Resolve(t.id); err != nil {
		v.report(path, IssueUnknownType, "id %d is not registered", uint8(t.id))
		return
	}

	switch t.id {
	case TagList:
		if depth+1 > v.maxDepth {
			v.report(path, IssueTooDeep, "depth %d exceeds %d", depth+1, v.maxDepth)
			return
		}
		for i, el := range t.listVal {
			elPath := fmt.Sprintf("%s[%d]", path, i)
			if el.id != t.elemID {
				v.report(elPath, IssueListMismatch, "list of %s holds %s", t.elemID, el.id)
			}
			if el.name != "" {
				v.report(elPath, IssueNamedListElement, "list element carries name %q", el.name)
			}
			v.walk(el, elPath, depth+1)
		}
	case TagCompound:
		if depth+1 > v.maxDepth {
			v.report(path, IssueTooDeep, "depth %d exceeds %d", depth+1, v.maxDepth)
			return
		}
		seen := make(map[string]bool, len(t.compVal))
		for _, child := range t.compVal {
			childPath := child.name
			if path != "" {
				childPath = path + "." + child.name
			}
			if seen[child.name] {
				v.report(childPath, IssueDuplicateKey, "key %q appears more than once", child.name)
			}
			seen[child.name] = true
			v.walk(child, childPath, depth+1)
		}
	}
}
