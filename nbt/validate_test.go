package nbt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ============================================================
// Validation Tests
// ============================================================

func TestValidate_CleanTree(t *testing.T) {
	if issues := Validate(sampleTree(t)); issues != nil {
		t.Errorf("Expected no issues, got %v", issues)
	}
}

func TestValidate_NilRoot(t *testing.T) {
	issues := Validate(nil)
	if len(issues) != 1 || issues[0].Code != IssueEndTag {
		t.Errorf("Expected one end-tag issue, got %v", issues)
	}
}

func TestValidate_BrokenTrees(t *testing.T) {
	// The constructors refuse to build these shapes, so the fixtures
	// assemble them field by field the way a buggy caller with its own
	// decoding layer could.
	mismatchedList := func() *Tag {
		root := Compound()
		l := List(TagInt)
		l.listVal = append(l.listVal, Int(1), String("oops"))
		root.compVal = append(root.compVal, l.WithName("items"))
		return root
	}
	namedElement := func() *Tag {
		root := Compound()
		l := List(TagInt)
		l.listVal = append(l.listVal, Int(1).WithName("leftover"))
		root.compVal = append(root.compVal, l.WithName("items"))
		return root
	}
	duplicateKeys := func() *Tag {
		root := Compound()
		root.compVal = append(root.compVal,
			Int(1).WithName("a"),
			Int(2).WithName("a"),
		)
		return root
	}
	endChild := func() *Tag {
		root := Compound()
		root.compVal = append(root.compVal, (&Tag{}).WithName("bad"))
		return root
	}
	unknownExtension := func() *Tag {
		root := Compound()
		root.compVal = append(root.compVal, Extension(TagID(99), "x").WithName("ext"))
		return root
	}

	tests := []struct {
		name     string
		tree     *Tag
		expected []ValidationIssue
	}{
		{
			"list element mismatch",
			mismatchedList(),
			[]ValidationIssue{
				{Path: "items[1]", Code: IssueListMismatch, Message: "list of int holds string"},
			},
		},
		{
			"named list element",
			namedElement(),
			[]ValidationIssue{
				{Path: "items[0]", Code: IssueNamedListElement, Message: `list element carries name "leftover"`},
			},
		},
		{
			"duplicate keys",
			duplicateKeys(),
			[]ValidationIssue{
				{Path: "a", Code: IssueDuplicateKey, Message: `key "a" appears more than once`},
			},
		},
		{
			"end tag as child",
			endChild(),
			[]ValidationIssue{
				{Path: "bad", Code: IssueEndTag, Message: "end tag used as a value"},
			},
		},
		{
			"unregistered id",
			unknownExtension(),
			[]ValidationIssue{
				{Path: "ext", Code: IssueUnknownType, Message: "id 99 is not registered"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.tree)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Issues mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_CollectsMultipleIssues(t *testing.T) {
	root := Compound()
	l := List(TagInt)
	l.listVal = append(l.listVal, String("oops").WithName("also named"))
	root.compVal = append(root.compVal,
		l.WithName("items"),
		Int(1).WithName("dup"),
		Int(2).WithName("dup"),
	)

	got := Validate(root)
	expected := []ValidationIssue{
		{Path: "items[0]", Code: IssueListMismatch, Message: "list of int holds string"},
		{Path: "items[0]", Code: IssueNamedListElement, Message: `list element carries name "also named"`},
		{Path: "dup", Code: IssueDuplicateKey, Message: `key "dup" appears more than once`},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_DepthCeiling(t *testing.T) {
	if issues := Validate(nestedCompounds(4), WithValidateMaxDepth(4)); issues != nil {
		t.Fatalf("Expected no issues at the limit, got %v", issues)
	}

	got := Validate(nestedCompounds(5), WithValidateMaxDepth(4))
	if len(got) != 1 || got[0].Code != IssueTooDeep {
		t.Fatalf("Expected one too-deep issue, got %v", got)
	}
	if got[0].Path != "c.c.c.c" {
		t.Errorf("Expected path c.c.c.c, got %q", got[0].Path)
	}
}

func TestValidate_RegistryOption(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(tickType()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	root := Compound()
	root.Put("age", Extension(TagID(64), int64(1)))

	if issues := Validate(root); len(issues) != 1 || issues[0].Code != IssueUnknownType {
		t.Errorf("Expected unknown-type against the default registry, got %v", issues)
	}
	if issues := Validate(root, WithValidateRegistry(reg)); issues != nil {
		t.Errorf("Expected no issues with the extension registered, got %v", issues)
	}
}

func TestValidationIssue_String(t *testing.T) {
	issue := ValidationIssue{Path: "items[2]", Code: IssueListMismatch, Message: "list of int holds string"}
	if got := issue.String(); got != "items[2]: list-element-mismatch: list of int holds string" {
		t.Errorf("Unexpected rendering: %q", got)
	}

	rootIssue := ValidationIssue{Code: IssueEndTag, Message: "nil tag"}
	if got := rootIssue.String(); got != "(root): end-tag: nil tag" {
		t.Errorf("Unexpected rendering: %q", got)
	}
}
