// Package stressgen generates Go source declaring a large synthetic set of
// component types and systems for the ecs stress test.
package stressgen

import (
	"bytes"
	"math/rand"
	"text/template"

	"github.com/rotisserie/eris"
	"golang.org/x/tools/imports"
)

type Config struct {
	Package    string
	Components int
	Systems    int
	Seed       int64
}

type system struct {
	Index int
	Src   int
	Dst   int
	Event bool
}

type templateData struct {
	Package    string
	Components []int
	Systems    []system
}

const source = `// Code generated by ecs-stress generate; DO NOT EDIT.

package {{.Package}}

import (
	"math/rand"

	"github.com/plus3/realm/ecs"
)

const (
	componentCount = {{len .Components}}
	systemCount    = {{len .Systems}}
)
{{range .Components}}
type Component{{.}} struct {
	Value float64
}
{{end}}
func RegisterAllGeneratedComponents(registry *ecs.ComponentRegistry) {
{{- range .Components}}
	ecs.RegisterComponent[Component{{.}}](registry)
{{- end}}
}

var componentFactories = []func(rng *rand.Rand) any{
{{- range .Components}}
	func(rng *rand.Rand) any { return Component{{.}}{Value: rng.Float64()} },
{{- end}}
}
{{range .Systems}}
type System{{.Index}} struct {
	Src ecs.Read[Component{{.Src}}]
	Dst ecs.Write[Component{{.Dst}}]
{{- if .Event}}
	Out ecs.EventWriter[StressEvent]
{{- end}}
}

func (s *System{{.Index}}) Execute(frame *ecs.UpdateFrame) error {
	for e, dst := range s.Dst.AllMut() {
		if src, ok := s.Src.Get(e); ok {
			dst.Value += src.Value * frame.DeltaTime
{{- if .Event}}
			if dst.Value > 1 {
				dst.Value = 0
				s.Out.Send(StressEvent{Entity: e, System: {{.Index}}})
			}
{{- end}}
		}
	}
	return nil
}
{{end}}
func RegisterAllGeneratedSystems(scheduler *ecs.Scheduler) error {
	systems := []ecs.System{
{{- range .Systems}}
		&System{{.Index}}{},
{{- end}}
	}
	for _, system := range systems {
		if _, err := scheduler.Register(system); err != nil {
			return err
		}
	}
	return nil
}
`

var tmpl = template.Must(template.New("stress").Parse(source))

// Generate renders the component and system declarations for cfg and
// formats the result. Component pairs are drawn from cfg.Seed so the output
// is reproducible; every fourth system also emits StressEvent, which the
// including package must declare.
func Generate(cfg Config) ([]byte, error) {
	if cfg.Package == "" {
		cfg.Package = "main"
	}
	if cfg.Components < 2 {
		return nil, eris.Errorf("need at least 2 components, got %d", cfg.Components)
	}
	if cfg.Systems < 0 {
		return nil, eris.Errorf("system count must not be negative, got %d", cfg.Systems)
	}

	data := templateData{
		Package:    cfg.Package,
		Components: make([]int, cfg.Components),
		Systems:    make([]system, cfg.Systems),
	}
	for i := range data.Components {
		data.Components[i] = i
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := range data.Systems {
		src := rng.Intn(cfg.Components)
		dst := rng.Intn(cfg.Components - 1)
		if dst >= src {
			dst++
		}
		data.Systems[i] = system{Index: i, Src: src, Dst: dst, Event: i%4 == 3}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, eris.Wrap(err, "render stress source")
	}
	formatted, err := imports.Process("zz_generated.go", buf.Bytes(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "format stress source")
	}
	return formatted, nil
}
