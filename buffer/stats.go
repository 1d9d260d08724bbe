package buffer

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DrainEvent records one iteration of the averager's drain loop, for
// post-hoc inspection of drain cadence and chunk sizing.
type DrainEvent struct {
	WallTimeUnixNano int64 `yaml:"wall_time_ns"`
	Count            int   `yaml:"count"`
	Addr             int   `yaml:"addr"`
	Length           int   `yaml:"length"`
}

// Trace is an ordered sequence of drain events for one acquire call.
type Trace struct {
	Events []DrainEvent `yaml:"events"`
}

// Append records one drain step.
func (t *Trace) Append(wallTimeUnixNano int64, count, addr, length int) {
	t.Events = append(t.Events, DrainEvent{
		WallTimeUnixNano: wallTimeUnixNano,
		Count:            count,
		Addr:             addr,
		Length:           length,
	})
}

// SaveYAML writes the trace to path as YAML.
func (t *Trace) SaveYAML(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
