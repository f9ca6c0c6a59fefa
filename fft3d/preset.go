package fft3d

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/fft3dfilter/dsp/overlap"
)

const maxPresetSize = 1 << 20

// ErrPresetFile reports a preset path that cannot be loaded.
var ErrPresetFile = errors.New("invalid preset file")

// Preset is a partial parameter set loaded from YAML. Unset keys keep the
// value they already have.
type Preset struct {
	Sigma  *float64 `yaml:"sigma,omitempty"`
	Sigma2 *float64 `yaml:"sigma2,omitempty"`
	Sigma3 *float64 `yaml:"sigma3,omitempty"`
	Sigma4 *float64 `yaml:"sigma4,omitempty"`
	Beta   *float64 `yaml:"beta,omitempty"`
	Planes []int    `yaml:"planes,omitempty"`

	BW *int `yaml:"bw,omitempty"`
	BH *int `yaml:"bh,omitempty"`
	BT *int `yaml:"bt,omitempty"`
	OW *int `yaml:"ow,omitempty"`
	OH *int `yaml:"oh,omitempty"`

	KRatio  *float64 `yaml:"kratio,omitempty"`
	Sharpen *float64 `yaml:"sharpen,omitempty"`
	SCutoff *float64 `yaml:"scutoff,omitempty"`
	SVR     *float64 `yaml:"svr,omitempty"`
	SMin    *float64 `yaml:"smin,omitempty"`
	SMax    *float64 `yaml:"smax,omitempty"`
	Degrid  *float64 `yaml:"degrid,omitempty"`
	Dehalo  *float64 `yaml:"dehalo,omitempty"`
	HR      *float64 `yaml:"hr,omitempty"`
	HT      *float64 `yaml:"ht,omitempty"`

	// WinType accepts a code or a window name.
	WinType *string `yaml:"wintype,omitempty"`

	Interlaced *bool `yaml:"interlaced,omitempty"`

	PFrame  *int     `yaml:"pframe,omitempty"`
	PX      *int     `yaml:"px,omitempty"`
	PY      *int     `yaml:"py,omitempty"`
	PShow   *bool    `yaml:"pshow,omitempty"`
	PCutoff *float64 `yaml:"pcutoff,omitempty"`
	PFactor *float64 `yaml:"pfactor,omitempty"`

	NCPU *int `yaml:"ncpu,omitempty"`
}

// LoadPreset reads a YAML preset file.
func LoadPreset(path string) (*Preset, error) {
	clean := filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(clean))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s: extension must be .yaml or .yml", ErrPresetFile, clean)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPresetFile, err)
	}
	if info.Size() > maxPresetSize {
		return nil, fmt.Errorf("%w: %s: %d bytes exceeds %d", ErrPresetFile, clean, info.Size(), maxPresetSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPresetFile, err)
	}
	return ParsePreset(data)
}

// ParsePreset decodes a YAML preset. Unknown keys are rejected.
func ParsePreset(data []byte) (*Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrPresetFile, err)
	}
	if p.WinType != nil {
		if _, err := overlap.ParseWindowType(*p.WinType); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPresetFile, err)
		}
	}
	return &p, nil
}

// Apply overlays the preset on params. A sigma without band sigmas sets all
// bands and a block size without overlap resets the overlap to a third.
func (p *Preset) Apply(params *Params) {
	if p == nil || params == nil {
		return
	}

	if p.Sigma != nil {
		params.Sigma = *p.Sigma
		params.Sigma2 = *p.Sigma
		params.Sigma3 = *p.Sigma
		params.Sigma4 = *p.Sigma
	}
	setFloat(&params.Sigma2, p.Sigma2)
	setFloat(&params.Sigma3, p.Sigma3)
	setFloat(&params.Sigma4, p.Sigma4)
	setFloat(&params.Beta, p.Beta)
	if p.Planes != nil {
		params.Planes = append([]int{}, p.Planes...)
	}

	if p.BW != nil {
		params.BW = *p.BW
		params.OW = *p.BW / 3
	}
	if p.BH != nil {
		params.BH = *p.BH
		params.OH = *p.BH / 3
	}
	setInt(&params.BT, p.BT)
	setInt(&params.OW, p.OW)
	setInt(&params.OH, p.OH)

	setFloat(&params.KRatio, p.KRatio)
	setFloat(&params.Sharpen, p.Sharpen)
	setFloat(&params.SCutoff, p.SCutoff)
	setFloat(&params.SVR, p.SVR)
	setFloat(&params.SMin, p.SMin)
	setFloat(&params.SMax, p.SMax)
	setFloat(&params.Degrid, p.Degrid)
	setFloat(&params.Dehalo, p.Dehalo)
	setFloat(&params.HR, p.HR)
	setFloat(&params.HT, p.HT)

	if p.WinType != nil {
		if t, err := overlap.ParseWindowType(*p.WinType); err == nil {
			params.WinType = t
		}
	}
	if p.Interlaced != nil {
		params.Interlaced = *p.Interlaced
	}

	setInt(&params.PFrame, p.PFrame)
	setInt(&params.PX, p.PX)
	setInt(&params.PY, p.PY)
	if p.PShow != nil {
		params.PShow = *p.PShow
	}
	setFloat(&params.PCutoff, p.PCutoff)
	setFloat(&params.PFactor, p.PFactor)
	setInt(&params.NCPU, p.NCPU)
}

// WithPreset applies a loaded preset.
func WithPreset(p *Preset) Option {
	return func(s *settings) {
		p.Apply(&s.params)
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
