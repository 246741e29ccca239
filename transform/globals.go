package transform

import "github.com/kdbg/kdbg/lang"

// Global is a top-level variable/constant declaration captured for
// injection into breakpoint and step payloads.
type Global struct {
	Name string
	Kind lang.GlobalKind
}

// CollectGlobals returns every Global declared at the top level of mod,
// in declaration order. lang.Parse
// has already excluded import-style initializers and inline type
// definitions, so every GlobalDecl here is eligible.
func CollectGlobals(mod *lang.Module) []Global {
	globals := make([]Global, 0, len(mod.Globals))
	for _, g := range mod.Globals {
		globals = append(globals, Global{Name: g.Name, Kind: g.Kind})
	}
	return globals
}
