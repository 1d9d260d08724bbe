// Package config loads the averager's configuration dictionary from a
// viper instance (TOML/YAML/JSON/env, whichever viper was set up with),
// the way the teacher's config.go loads its digdar/radar keys — but
// fails fast on a missing key instead of silently substituting a
// "bogus but keeps running" default (SPEC_FULL.md §3.J).
package config

import (
	"github.com/spf13/viper"

	"github.com/jbrzusto/tprocgo/tproc"
)

// Dict is the averager's recognized configuration (spec.md §6
// "Configuration dictionary").
type Dict struct {
	Reps       int
	Expts      int
	Start      float64
	Step       float64
	SoftAvgs   int
	AdcFreqs   map[string]float64 // keyed by channel number as a string, per viper's map decoding
	AdcLengths map[string]int
}

// Load reads reps, expts, start, step, soft_avgs, adc_freqs, adc_lengths
// from v. Every key is required; a missing one fails the whole load with
// tproc.ErrConfigMissing wrapping the key name, rather than running an
// acquire with silently-defaulted reps/expts (the teacher's
// setDefaultConfig instinct is explicitly wrong for a metrology
// instrument — see SPEC_FULL.md §3.J).
func Load(v *viper.Viper) (Dict, error) {
	var d Dict
	for _, key := range []string{"reps", "expts", "start", "step", "soft_avgs", "adc_freqs", "adc_lengths"} {
		if !v.IsSet(key) {
			return Dict{}, tproc.NewConfigMissingError(key)
		}
	}

	d.Reps = v.GetInt("reps")
	d.Expts = v.GetInt("expts")
	d.Start = v.GetFloat64("start")
	d.Step = v.GetFloat64("step")
	d.SoftAvgs = v.GetInt("soft_avgs")
	d.AdcFreqs = v.GetStringMapFloat64("adc_freqs")
	d.AdcLengths = map[string]int{}
	for ch, length := range v.GetStringMap("adc_lengths") {
		switch n := length.(type) {
		case int:
			d.AdcLengths[ch] = n
		case int64:
			d.AdcLengths[ch] = int(n)
		case float64:
			d.AdcLengths[ch] = int(n)
		}
	}
	return d, nil
}
