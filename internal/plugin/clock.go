package plugin

import (
	"context"
	"strings"
	"time"

	"github.com/barline/barline/internal/module"
	"github.com/barline/barline/internal/particle"
	"github.com/barline/barline/internal/tag"
)

// clockFactory builds the "clock" built-in module, grounded in yambar's
// modules/clock.c: it produces "time" and "date" string tags from
// time.Format layouts and feeds them to a configured content particle.
type clockFactory struct{}

func (clockFactory) VerifyConf(chain []string, node Node) error {
	_, err := ParticleFromNode(node["content"], Inherited{})
	return err
}

func (clockFactory) FromConf(node Node, inherited Inherited, bar module.Bar) (module.Module, error) {
	content, err := ParticleFromNode(node["content"], inherited)
	if err != nil {
		return nil, err
	}
	timeFormat := node.string("time-format", "15:04")
	dateFormat := node.string("date-format", "2006-01-02")
	return &clockModule{
		Base:       module.NewBase(bar),
		content:    content,
		timeFormat: timeFormat,
		dateFormat: dateFormat,
		utc:        nodeBool(node, "utc", false),
		// A layout containing any '0' or '5' character gets once-a-second
		// updates, otherwise once a minute, after clock.c's
		// UPDATE_GRANULARITY heuristic. The check covers every seconds
		// directive but also matches hour and minute directives such as
		// "15" and "04", so the default "15:04" layout updates every second.
		perSecond: strings.ContainsAny(timeFormat, "05"),
	}, nil
}

type clockModule struct {
	module.Base
	content    particle.Particle
	timeFormat string
	dateFormat string
	utc        bool
	perSecond  bool
}

func (m *clockModule) Content() particle.Exposable {
	m.Lock()
	defer m.Unlock()

	now := time.Now()
	t := now
	if m.utc {
		t = now.UTC()
	}
	tags := tag.NewSet(
		tag.NewString("time", t.Format(m.timeFormat)),
		tag.NewString("date", t.Format(m.dateFormat)),
	)
	return m.content.Instantiate(tags, now)
}

func (m *clockModule) Run(ctx context.Context) int {
	m.Bar.Refresh()
	for {
		now := time.Now()
		var next time.Time
		if m.perSecond {
			next = now.Truncate(time.Second).Add(time.Second)
		} else {
			next = now.Truncate(time.Minute).Add(time.Minute)
		}
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0
		case <-timer.C:
			m.Bar.Refresh()
		}
	}
}

func nodeBool(n Node, key string, def bool) bool {
	if v, ok := n[key].(bool); ok {
		return v
	}
	return def
}
