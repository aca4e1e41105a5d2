package sim

// A PipelineBuilder turns an unordered collection of components into a
// Pipeline with a safe execution order. It validates that every value has at
// most one writer, that writers and readers agree on units, and that the
// write→read dependencies are acyclic.
type PipelineBuilder struct {
	components []Component
}

// MakePipelineBuilder creates a new PipelineBuilder.
func MakePipelineBuilder() PipelineBuilder {
	return PipelineBuilder{}
}

// WithComponents adds components to the builder.
func (b PipelineBuilder) WithComponents(components ...Component) PipelineBuilder {
	b.components = append(b.components, components...)
	return b
}

type writerInfo struct {
	index int
	dep   Dependency
}

// Build computes the execution order. A read of a value that no component
// writes is not an error; such values are external inputs seeded outside the
// pipeline, typically parameters.
func (b PipelineBuilder) Build() (*Pipeline, error) {
	writers, err := b.collectWriters()
	if err != nil {
		return nil, err
	}

	successors, inDegrees, err := b.buildEdges(writers)
	if err != nil {
		return nil, err
	}

	ordered, err := b.sortComponents(successors, inDegrees)
	if err != nil {
		return nil, err
	}

	return &Pipeline{components: ordered}, nil
}

func (b PipelineBuilder) collectWriters() (map[string]writerInfo, error) {
	writers := make(map[string]writerInfo)

	for i, c := range b.components {
		for _, dep := range c.Writes() {
			key := dep.canonicalName()

			if prev, ok := writers[key]; ok {
				return nil, DuplicateWriterError{
					ValueName: dep.ValueName,
					First:     b.components[prev.index].Name(),
					Second:    c.Name(),
				}
			}

			writers[key] = writerInfo{index: i, dep: dep}
		}
	}

	return writers, nil
}

func (b PipelineBuilder) buildEdges(
	writers map[string]writerInfo,
) (successors [][]int, inDegrees []int, err error) {
	successors = make([][]int, len(b.components))
	inDegrees = make([]int, len(b.components))

	for i, c := range b.components {
		for _, dep := range c.Reads() {
			writer, ok := writers[dep.canonicalName()]
			if !ok {
				continue
			}

			if writer.dep.Unit != dep.Unit {
				return nil, nil, UnitMismatchError{
					ValueName:  dep.ValueName,
					Writer:     b.components[writer.index].Name(),
					WriterUnit: writer.dep.Unit,
					Reader:     c.Name(),
					ReaderUnit: dep.Unit,
				}
			}

			successors[writer.index] = append(successors[writer.index], i)
			inDegrees[i]++
		}
	}

	return successors, inDegrees, nil
}

// sortComponents runs a stable variant of Kahn's algorithm: among all ready
// components, the one added earliest is always selected next, so the order is
// deterministic and independent of how dependency-free components interleave.
func (b PipelineBuilder) sortComponents(
	successors [][]int,
	inDegrees []int,
) ([]Component, error) {
	ordered := make([]Component, 0, len(b.components))
	placed := make([]bool, len(b.components))

	for len(ordered) < len(b.components) {
		next := -1
		for i := range b.components {
			if !placed[i] && inDegrees[i] == 0 {
				next = i
				break
			}
		}

		if next == -1 {
			return nil, DependencyCycleError{Blocked: b.blockedNames(placed)}
		}

		placed[next] = true
		ordered = append(ordered, b.components[next])

		for _, succ := range successors[next] {
			inDegrees[succ]--
		}
	}

	return ordered, nil
}

func (b PipelineBuilder) blockedNames(placed []bool) []string {
	var blocked []string
	for i, c := range b.components {
		if !placed[i] {
			blocked = append(blocked, c.Name())
		}
	}

	return blocked
}
