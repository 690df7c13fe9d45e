package ecs

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stage is one group of systems that may run without conflicting with each
// other. Systems run in the listed order.
type Stage struct {
	Index   int
	Systems []SystemId
}

func (s Stage) String() string {
	names := make([]string, len(s.Systems))
	for i, id := range s.Systems {
		names[i] = string(id)
	}
	return fmt.Sprintf("stage %d: %s", s.Index, strings.Join(names, ", "))
}

// SystemInfo is the read-only diagnostic view of one scheduled system.
type SystemInfo struct {
	Id     SystemId
	Stage  int
	Order  int
	Claims []Claim
	// Before and After are the explicit ordering constraints.
	Before []SystemId
	After  []SystemId
	// DependsOn lists every direct predecessor in the dependency graph,
	// explicit or derived from an access conflict.
	DependsOn []SystemId
	Required  []string
}

// Schedule is the ordered execution plan derived from the registered systems.
// It is immutable once built and reused across frames until the system set
// changes.
type Schedule struct {
	stages []Stage
	infos  map[SystemId]*SystemInfo
	plan   [][]*systemEntry
}

func newSchedule(g *graph, groups [][]int) *Schedule {
	sched := &Schedule{
		stages: make([]Stage, len(groups)),
		infos:  make(map[SystemId]*SystemInfo, len(g.entries)),
		plan:   make([][]*systemEntry, len(groups)),
	}
	for idx, members := range groups {
		stage := Stage{Index: idx, Systems: make([]SystemId, len(members))}
		for k, u := range members {
			entry := g.entries[u]
			stage.Systems[k] = entry.id
			sched.plan[idx] = append(sched.plan[idx], entry)

			info := &SystemInfo{
				Id:     entry.id,
				Stage:  idx,
				Order:  entry.order,
				Claims: entry.access.Claims(),
				Before: append([]SystemId(nil), entry.config.before...),
				After:  append([]SystemId(nil), entry.config.after...),
			}
			for _, p := range g.preds[u] {
				info.DependsOn = append(info.DependsOn, g.entries[p].id)
			}
			for _, t := range entry.required {
				info.Required = append(info.Required, t.String())
			}
			sched.infos[entry.id] = info
		}
		sched.stages[idx] = stage
	}
	return sched
}

// Len returns the number of stages.
func (s *Schedule) Len() int {
	return len(s.stages)
}

// Stages returns a copy of the stages in execution order.
func (s *Schedule) Stages() []Stage {
	stages := make([]Stage, len(s.stages))
	for i, stage := range s.stages {
		stages[i] = Stage{Index: stage.Index, Systems: append([]SystemId(nil), stage.Systems...)}
	}
	return stages
}

// StageOf returns the stage index of a system.
func (s *Schedule) StageOf(id SystemId) (int, bool) {
	info, ok := s.infos[id]
	if !ok {
		return 0, false
	}
	return info.Stage, true
}

// System returns the diagnostic view of a system.
func (s *Schedule) System(id SystemId) (SystemInfo, bool) {
	info, ok := s.infos[id]
	if !ok {
		return SystemInfo{}, false
	}
	return *info, true
}

// Systems returns every system in execution order.
func (s *Schedule) Systems() []SystemInfo {
	infos := make([]SystemInfo, 0, len(s.infos))
	for _, stage := range s.stages {
		for _, id := range stage.Systems {
			infos = append(infos, *s.infos[id])
		}
	}
	return infos
}

// String renders one line per stage.
func (s *Schedule) String() string {
	var sb strings.Builder
	for _, stage := range s.stages {
		sb.WriteString(stage.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

type yamlSchedule struct {
	Stages []yamlStage `yaml:"stages"`
}

type yamlStage struct {
	Stage   int          `yaml:"stage"`
	Systems []yamlSystem `yaml:"systems"`
}

type yamlSystem struct {
	Name      string   `yaml:"name"`
	Reads     []string `yaml:"reads,omitempty"`
	Writes    []string `yaml:"writes,omitempty"`
	Required  []string `yaml:"required,omitempty"`
	DependsOn []string `yaml:"depends_on,omitempty"`
}

// WriteYAML dumps the schedule with per-system claims for inspection tooling.
func (s *Schedule) WriteYAML(w io.Writer) error {
	doc := yamlSchedule{Stages: make([]yamlStage, 0, len(s.stages))}
	for _, stage := range s.stages {
		ys := yamlStage{Stage: stage.Index}
		for _, id := range stage.Systems {
			info := s.infos[id]
			sys := yamlSystem{Name: string(id), Required: info.Required}
			for _, claim := range info.Claims {
				if claim.Mode == AccessWrite {
					sys.Writes = append(sys.Writes, claim.Key.String())
				} else {
					sys.Reads = append(sys.Reads, claim.Key.String())
				}
			}
			for _, dep := range info.DependsOn {
				sys.DependsOn = append(sys.DependsOn, string(dep))
			}
			ys.Systems = append(ys.Systems, sys)
		}
		doc.Stages = append(doc.Stages, ys)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
