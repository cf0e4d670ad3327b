package ast

import (
	"fmt"
	"strings"
)

// Dump renders a module as an indented tree. It exists purely as a
// debugging aid for the CLI's -dump flag; it is not part of
// the parse contract and its exact output is not a stability guarantee.
func Dump(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Module %q\n", m.Path)
	if m.HasDeclaredName {
		fmt.Fprintf(&b, "  name: %s\n", m.DeclaredName)
	}
	for _, imp := range m.Imports {
		fmt.Fprintf(&b, "  bring %s\n", imp.Name)
	}
	for _, d := range m.Decls {
		dumpDecl(&b, d, 1)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpDecl(b *strings.Builder, d Decl, depth int) {
	indent(b, depth)
	switch v := d.(type) {
	case *FunDecl:
		fmt.Fprintf(b, "FunDecl %s pub=%v\n", v.Name, v.IsPub)
		dumpBlock(b, v.Body, depth+1)
	case *MacroDecl:
		fmt.Fprintf(b, "MacroDecl %s pub=%v\n", v.Name, v.IsPub)
		dumpBlock(b, v.Body, depth+1)
	case *EntryDecl:
		fmt.Fprintf(b, "EntryDecl\n")
		dumpBlock(b, v.Body, depth+1)
	case *ConstDecl:
		fmt.Fprintf(b, "ConstDecl %s\n", v.Name)
	case *DefDecl:
		fmt.Fprintf(b, "DefDecl %s mut=%v\n", v.Name, v.IsMut)
	case *ClassDecl:
		fmt.Fprintf(b, "ClassDecl %s kind=%d seal=%v\n", v.Name, v.Kind, v.IsSeal)
	default:
		fmt.Fprintf(b, "<unknown decl %T>\n", d)
	}
}

func dumpBlock(b *strings.Builder, blk *BlockStmt, depth int) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		indent(b, depth)
		fmt.Fprintf(b, "%T\n", s)
	}
}
