package module

import (
	"fmt"
	"strings"

	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
)

// ErrPreloadedMiss/ErrImportTarget are detail errors a ResolveImports call
// reports when an import record can't be satisfied; callers receive them
// as returned, since §7 has no dedicated import-resolution error kind.
var (
	ErrPreloadedMiss = fmt.Errorf("preloaded module symbol not found")
	ErrImportTarget  = fmt.Errorf("import target could not be resolved")
)

// ResourceLoader maps a module path to its loaded namespace; it is how a
// host (package registry's fileLoader) plugs module loading into the
// module cache without this package needing to know how modules are read.
type ResourceLoader interface {
	// LoadModule compiles and/or loads path, returning the module's
	// resulting top-level namespace.
	LoadModule(path string) (*namespace.Namespace, error)
	// LoadJSON reads path as a JSON resource and returns its decoded value.
	LoadJSON(path string) (*values.Value, error)
}

func isJSONPath(path string) bool {
	return strings.HasSuffix(path, ".json")
}

// ResolveImports implements §4.J: for each recorded unresolved import in
// ns, resolve it against either a preloaded module (already in cache),
// another script/module namespace (loaded via loader, imports resolved
// depth-first first), or a JSON resource. Export-self adjustment already
// happened at declaration time via namespace.DeclareExport.
func (c *Cache) ResolveImports(ns *namespace.Namespace, loader ResourceLoader) error {
	for _, imp := range ns.Imports() {
		if err := c.resolveOne(ns, imp, loader); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) resolveOne(ns *namespace.Namespace, imp *namespace.UnresolvedImport, loader ResourceLoader) error {
	if imp.IsPreloaded {
		modID := strings.TrimPrefix(imp.FromPath, "module:")
		m, ok := c.Get(modID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPreloadedMiss, modID)
		}
		last := lastNamespace(m)
		if last == nil {
			return fmt.Errorf("%w: module %s has no namespace", ErrPreloadedMiss, modID)
		}
		ns.Import(last, imp.IsExported, nonEmpty(imp.ShowList))
		return nil
	}

	if isJSONPath(imp.FromPath) {
		v, err := loader.LoadJSON(imp.FromPath)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrImportTarget, imp.FromPath, err)
		}
		alias := imp.Alias
		if alias == "" {
			alias = imp.FromPath
		}
		ns.DefineImport(alias, v, imp.FromPath)
		return nil
	}

	target, err := loader.LoadModule(imp.FromPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrImportTarget, imp.FromPath, err)
	}
	// Resolve the target's own imports first (depth-first, §4.J step 2).
	if err := c.ResolveImports(target, loader); err != nil {
		return err
	}
	if imp.Alias != "" {
		aliasNS := namespace.New(imp.Alias, "", nil, "_")
		aliasNS.Import(target, false, nil)
		ns.DefineImport(imp.Alias, values.NewAccessor(values.TypeNamespace, aliasNS), imp.FromPath)
		return nil
	}
	ns.Import(target, imp.IsExported, nonEmpty(imp.ShowList))
	return nil
}

func nonEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}

func lastNamespace(m *Module) *namespace.Namespace {
	if m.Primary != "" {
		return m.Namespaces[m.Primary]
	}
	return nil
}
