package plugin

import (
	"context"
	"time"

	"github.com/barline/barline/internal/module"
	"github.com/barline/barline/internal/particle"
	"github.com/barline/barline/internal/tag"
)

// labelFactory builds the "label" built-in module: a config-only static
// module with no tags of its own, grounded in yambar's modules/label.c.
type labelFactory struct{}

func (labelFactory) VerifyConf(chain []string, node Node) error {
	_, err := ParticleFromNode(node["content"], Inherited{})
	return err
}

func (labelFactory) FromConf(node Node, inherited Inherited, bar module.Bar) (module.Module, error) {
	content, err := ParticleFromNode(node["content"], inherited)
	if err != nil {
		return nil, err
	}
	return &labelModule{Base: module.NewBase(bar), content: content}, nil
}

type labelModule struct {
	module.Base
	content particle.Particle
}

func (m *labelModule) Content() particle.Exposable {
	return m.content.Instantiate(tag.NewSet(), time.Now())
}

// Run has nothing to do — label has no internal state to update — but
// still blocks until shutdown is signalled rather than returning
// immediately, so the bar's module fleet only completes at shutdown.
func (m *labelModule) Run(ctx context.Context) int {
	<-ctx.Done()
	return 0
}
