// Package native resolves a feature module's exported entry points.
//
// Two loaders are provided. TableLoader serves entry points registered as Go
// functions in-process; DlopenLoader opens the shared library named by an
// installed module's descriptor and resolves each declared symbol to an
// address. Chain combines them so built-in modules never touch the
// filesystem. Either way callers receive Symbols and bind entries to typed Go
// function variables with Symbols.Bind.
package native
