package avg

import (
	"fmt"

	"github.com/jbrzusto/tprocgo/device"
	"github.com/jbrzusto/tprocgo/pulse"
)

// AcquireDecimated runs the time-resolved, software-averaged variant for
// a reps == 1 SingleAxisProgram: softAvgs successive TP runs, each
// re-enabling capture and reloading the program, reading the decimated
// buffer once per ADC and accumulating (spec.md §4.F "Decimated
// variant"). The result is the sum divided by softAvgs.
func (p *SingleAxisProgram) AcquireDecimated(cfg Config, softAvgs int) (i, q map[int][]float64, err error) {
	if p.Reps != 1 {
		return nil, nil, fmt.Errorf("avg: AcquireDecimated requires Reps == 1, got %d", p.Reps)
	}
	if err := pulse.UploadEnvelopes(p.Sequencer, cfg.Device); err != nil {
		return nil, nil, err
	}
	if err := setupCapture(cfg); err != nil {
		return nil, nil, err
	}

	words, err := p.Sequencer.Program.Compile()
	if err != nil {
		return nil, nil, err
	}

	sumI := make(map[int][]float64, len(cfg.Channels))
	sumQ := make(map[int][]float64, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		sumI[ch] = make([]float64, cfg.AdcLength[ch])
		sumQ[ch] = make([]float64, cfg.AdcLength[ch])
	}

	logger := cfg.logger()
	for iter := 0; iter < softAvgs; iter++ {
		if err := cfg.Device.Stop(); err != nil {
			return nil, nil, err
		}
		if err := setupCapture(cfg); err != nil {
			return nil, nil, err
		}
		if err := cfg.Device.Poke(device.CounterAddr, 0); err != nil {
			return nil, nil, err
		}
		if err := cfg.Device.LoadProgram(words); err != nil {
			return nil, nil, err
		}
		if err := cfg.Device.Start(); err != nil {
			return nil, nil, err
		}

		for {
			raw, err := cfg.Device.Peek(device.CounterAddr)
			if err != nil {
				return nil, nil, err
			}
			if raw >= 1 {
				break
			}
		}

		for _, ch := range cfg.Channels {
			di, dq, err := cfg.Device.ReadDecimated(ch, 0, cfg.AdcLength[ch])
			if err != nil {
				return nil, nil, err
			}
			for n := range di {
				sumI[ch][n] += float64(di[n])
				sumQ[ch][n] += float64(dq[n])
			}
		}
		logger.Debug("soft average iteration complete", "iter", iter+1, "of", softAvgs)
	}

	i, q = map[int][]float64{}, map[int][]float64{}
	for _, ch := range cfg.Channels {
		i[ch] = make([]float64, len(sumI[ch]))
		q[ch] = make([]float64, len(sumQ[ch]))
		for n := range sumI[ch] {
			i[ch][n] = sumI[ch][n] / float64(softAvgs)
			q[ch][n] = sumQ[ch][n] / float64(softAvgs)
		}
	}
	return i, q, nil
}
