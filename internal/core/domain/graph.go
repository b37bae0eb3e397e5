package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Graph is the immutable dependency graph for one run. An edge exists from
// target A to target B iff B defines a module A uses. Used modules with no
// defining target in the build are external and carry no edge.
type Graph struct {
	targets    map[InternedString]Target
	order      []InternedString
	ifaces     map[InternedString]ModuleInterface
	provider   map[InternedString]InternedString
	deps       map[InternedString][]InternedString
	dependents map[InternedString][]InternedString
	users      map[InternedString][]InternedString
	priority   map[InternedString]int
}

// BuildGraph resolves scanner output for every target into a validated DAG.
// It fails with ErrDuplicateModule if two targets define the same module and
// with ErrCycleDetected if the edge set is cyclic. Priorities are computed
// once here; the topology never changes mid-run.
func BuildGraph(targets []Target, ifaces map[InternedString]ModuleInterface) (*Graph, error) {
	g := &Graph{
		targets:    make(map[InternedString]Target, len(targets)),
		order:      make([]InternedString, 0, len(targets)),
		ifaces:     ifaces,
		provider:   make(map[InternedString]InternedString),
		deps:       make(map[InternedString][]InternedString, len(targets)),
		dependents: make(map[InternedString][]InternedString, len(targets)),
		users:      make(map[InternedString][]InternedString),
		priority:   make(map[InternedString]int, len(targets)),
	}

	for _, t := range targets {
		if _, exists := g.targets[t.Name]; exists {
			return nil, zerr.With(ErrSpecMalformed, "duplicate_target", t.Name.String())
		}
		g.targets[t.Name] = t
		g.order = append(g.order, t.Name)
	}

	if err := g.mapProviders(); err != nil {
		return nil, err
	}
	g.resolveEdges()

	if err := g.validate(); err != nil {
		return nil, err
	}
	g.computePriorities()

	return g, nil
}

// mapProviders builds the module -> defining-target index.
func (g *Graph) mapProviders() error {
	for _, name := range g.order {
		for _, mod := range g.ifaces[name].Defines {
			if first, exists := g.provider[mod]; exists {
				err := zerr.With(ErrDuplicateModule, "module", mod.String())
				err = zerr.With(err, "first_target", first.String())
				err = zerr.With(err, "second_target", name.String())
				return err
			}
			g.provider[mod] = name
		}
	}
	return nil
}

// resolveEdges maps each target's used modules to defining targets. Modules
// without a provider are external and silently dropped.
func (g *Graph) resolveEdges() {
	for _, name := range g.order {
		seen := make(map[InternedString]bool)
		for _, mod := range sortedModules(g.ifaces[name].Uses) {
			prov, ok := g.provider[mod]
			if !ok || prov == name {
				continue
			}
			g.users[mod] = append(g.users[mod], name)
			if !seen[prov] {
				seen[prov] = true
				g.deps[name] = append(g.deps[name], prov)
			}
		}
	}
	for _, name := range g.order {
		for _, dep := range g.deps[name] {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}
}

// validate detects cycles via depth-first search with recursion-stack
// tracking.
func (g *Graph) validate() error {
	visited := make(map[InternedString]int, len(g.order)) // 0 unvisited, 1 visiting, 2 done
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.deps[u] {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		return nil
	}

	for _, name := range g.order {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildCycleError constructs an error carrying the cycle's members in order.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	start := slices.Index(path, dep)
	cyclePath := ""
	for i := start; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += dep.String()
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}

// computePriorities fills the scheduling priority of every target: 1 plus
// the sum of the priorities of its direct dependents. A heavily
// depended-upon target therefore sorts first and unblocks the most
// downstream work.
func (g *Graph) computePriorities() {
	var visit func(name InternedString) int
	visit = func(name InternedString) int {
		if p, ok := g.priority[name]; ok {
			return p
		}
		p := 1
		for _, dep := range g.dependents[name] {
			p += visit(dep)
		}
		g.priority[name] = p
		return p
	}
	for _, name := range g.order {
		visit(name)
	}
}

// Targets returns all targets in spec order.
func (g *Graph) Targets() []Target {
	res := make([]Target, len(g.order))
	for i, name := range g.order {
		res[i] = g.targets[name]
	}
	return res
}

// Target returns the target with the given name.
func (g *Graph) Target(name InternedString) (Target, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// Interface returns the scanned module interface of a target.
func (g *Graph) Interface(name InternedString) ModuleInterface {
	return g.ifaces[name]
}

// Deps returns the targets whose modules the named target uses.
func (g *Graph) Deps(name InternedString) []InternedString {
	return g.deps[name]
}

// Dependents returns the targets that directly depend on the named target.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// Users returns the targets that use the named module.
func (g *Graph) Users(module InternedString) []InternedString {
	return g.users[module]
}

// Provider returns the target defining the named module, if any.
func (g *Graph) Provider(module InternedString) (InternedString, bool) {
	prov, ok := g.provider[module]
	return prov, ok
}

// Priority returns the precomputed scheduling priority of a target.
func (g *Graph) Priority(name InternedString) int {
	return g.priority[name]
}

// TargetCount returns the number of targets in the graph.
func (g *Graph) TargetCount() int {
	return len(g.order)
}

func sortedModules(set map[InternedString]struct{}) []InternedString {
	mods := make([]InternedString, 0, len(set))
	for m := range set {
		mods = append(mods, m)
	}
	slices.SortFunc(mods, func(a, b InternedString) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		default:
			return 0
		}
	})
	return mods
}
