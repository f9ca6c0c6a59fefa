package main

import (
	"fmt"

	"github.com/cwbudde/fft3dfilter/dsp/overlap"
	"github.com/cwbudde/fft3dfilter/fft3d"
)

// paramFlags mirrors the filter parameters. Unset flags keep the preset or
// default value.
type paramFlags struct {
	Preset string `type:"existingfile" help:"YAML preset applied before the flags."`

	Sigma  *float64 `name:"sigma" help:"Noise level of the highest frequencies; sets all bands (default 2)."`
	Sigma2 *float64 `name:"sigma2" help:"Noise level at 2/3 of the frequency range."`
	Sigma3 *float64 `name:"sigma3" help:"Noise level at 1/3 of the frequency range."`
	Sigma4 *float64 `name:"sigma4" help:"Noise level at DC."`
	Beta   *float64 `name:"beta" help:"Noise margin, >= 1 (default 1)."`
	Planes []int    `name:"planes" sep:"," help:"Planes to filter (default all)."`

	BW *int `name:"bw" help:"Block width (default 32)."`
	BH *int `name:"bh" help:"Block height (default 32)."`
	BT *int `name:"bt" help:"Temporal mode: -1 sharpen, 0 kalman, 1-5 wiener depth (default 3)."`
	OW *int `name:"ow" help:"Horizontal overlap (default bw/3)."`
	OH *int `name:"oh" help:"Vertical overlap (default bh/3)."`

	KRatio  *float64 `name:"kratio" help:"Kalman motion threshold ratio (default 2)."`
	Sharpen *float64 `name:"sharpen" help:"Sharpen strength (default 0)."`
	SCutoff *float64 `name:"scutoff" help:"Sharpen low-frequency cutoff (default 0.3)."`
	SVR     *float64 `name:"svr" help:"Vertical to horizontal sharpen ratio (default 1)."`
	SMin    *float64 `name:"smin" help:"Sharpen lower limit (default 4)."`
	SMax    *float64 `name:"smax" help:"Sharpen upper limit (default 20)."`
	Degrid  *float64 `name:"degrid" help:"Grid artifact compensation (default 1)."`
	Dehalo  *float64 `name:"dehalo" help:"Halo removal strength (default 0)."`
	HR      *float64 `name:"hr" help:"Halo radius (default 2)."`
	HT      *float64 `name:"ht" help:"Halo threshold (default 50)."`

	WinType *string `name:"wintype" help:"Window: rectangular, hanning, raised-cosine, flat or 0-3 (default rectangular)."`

	Interlaced bool `name:"interlaced" help:"Filter the two fields separately."`

	PFrame  *int     `name:"pframe" help:"Frame used for the noise pattern (default 0)."`
	PX      *int     `name:"px" help:"Pattern block column; 0 with py 0 picks the quietest block."`
	PY      *int     `name:"py" help:"Pattern block row."`
	PShow   bool     `name:"pshow" help:"Report the noise pattern instead of filtering."`
	PCutoff *float64 `name:"pcutoff" help:"Noise pattern high-pass cutoff (default 0.1)."`
	PFactor *float64 `name:"pfactor" help:"Noise pattern scale; 0 disables the pattern (default 0)."`

	NCPU *int `name:"ncpu" help:"Worker count (default 1)."`
}

// preset converts the flags that were given into a preset.
func (f *paramFlags) preset() *fft3d.Preset {
	p := &fft3d.Preset{
		Sigma:   f.Sigma,
		Sigma2:  f.Sigma2,
		Sigma3:  f.Sigma3,
		Sigma4:  f.Sigma4,
		Beta:    f.Beta,
		Planes:  f.Planes,
		BW:      f.BW,
		BH:      f.BH,
		BT:      f.BT,
		OW:      f.OW,
		OH:      f.OH,
		KRatio:  f.KRatio,
		Sharpen: f.Sharpen,
		SCutoff: f.SCutoff,
		SVR:     f.SVR,
		SMin:    f.SMin,
		SMax:    f.SMax,
		Degrid:  f.Degrid,
		Dehalo:  f.Dehalo,
		HR:      f.HR,
		HT:      f.HT,
		WinType: f.WinType,
		PFrame:  f.PFrame,
		PX:      f.PX,
		PY:      f.PY,
		PCutoff: f.PCutoff,
		PFactor: f.PFactor,
		NCPU:    f.NCPU,
	}
	if f.Interlaced {
		p.Interlaced = &f.Interlaced
	}
	if f.PShow {
		p.PShow = &f.PShow
	}
	return p
}

// options layers the defaults, the clip's field order, the preset file and
// the flags, in that order.
func (f *paramFlags) options(interlaced bool) ([]fft3d.Option, error) {
	opts := []fft3d.Option{fft3d.WithInterlaced(interlaced)}

	if f.Preset != "" {
		p, err := fft3d.LoadPreset(f.Preset)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fft3d.WithPreset(p))
	}

	if f.WinType != nil {
		if _, err := overlap.ParseWindowType(*f.WinType); err != nil {
			return nil, fmt.Errorf("--wintype: %w", err)
		}
	}
	return append(opts, fft3d.WithPreset(f.preset())), nil
}
