package pipeline

import "time"

// Params holds the full set of user-controllable knobs for one
// bookmark build (spec.md section 3).
type Params struct {
	ColorCount          int
	LayerThicknessMM    float64
	BaseThicknessMM     float64
	WidthMM             float64
	HeightMM            float64
	CornerRadiusMM      float64
	MinWallThicknessMM  float64
	MinFeatureSizeMM    float64
	SimplificationRatio float64
	MaxVertices         int
	Seed                int64
	Timeout             time.Duration
	MemoryBudgetBytes   int64
}

// DefaultParams mirrors the teacher's Config.Resolve pattern of filling
// zero-valued fields with sane defaults rather than requiring every
// caller to specify everything.
func DefaultParams() Params {
	return Params{
		ColorCount:          6,
		LayerThicknessMM:    0.2,
		BaseThicknessMM:     1.0,
		WidthMM:             50,
		HeightMM:            150,
		CornerRadiusMM:      2,
		MinWallThicknessMM:  0.4,
		MinFeatureSizeMM:    0.4,
		SimplificationRatio: 0.5,
		MaxVertices:         200000,
		Seed:                1,
		Timeout:             30 * time.Second,
		MemoryBudgetBytes:   500 * 1024 * 1024,
	}
}

// Resolve fills zero-valued fields of p with DefaultParams' values,
// CLI/caller-specified non-zero fields winning, then validates the
// result.
func (p Params) Resolve() (Params, error) {
	d := DefaultParams()
	if p.ColorCount <= 0 {
		p.ColorCount = d.ColorCount
	}
	if p.LayerThicknessMM <= 0 {
		p.LayerThicknessMM = d.LayerThicknessMM
	}
	if p.BaseThicknessMM <= 0 {
		p.BaseThicknessMM = d.BaseThicknessMM
	}
	if p.WidthMM <= 0 {
		p.WidthMM = d.WidthMM
	}
	if p.HeightMM <= 0 {
		p.HeightMM = d.HeightMM
	}
	if p.CornerRadiusMM < 0 {
		p.CornerRadiusMM = d.CornerRadiusMM
	}
	if p.MinWallThicknessMM <= 0 {
		p.MinWallThicknessMM = d.MinWallThicknessMM
	}
	if p.MinFeatureSizeMM <= 0 {
		p.MinFeatureSizeMM = d.MinFeatureSizeMM
	}
	if p.SimplificationRatio <= 0 {
		p.SimplificationRatio = d.SimplificationRatio
	}
	if p.MaxVertices <= 0 {
		p.MaxVertices = d.MaxVertices
	}
	if p.Timeout <= 0 {
		p.Timeout = d.Timeout
	}
	if p.MemoryBudgetBytes <= 0 {
		p.MemoryBudgetBytes = d.MemoryBudgetBytes
	}

	if err := p.validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p Params) validate() error {
	switch {
	case p.ColorCount < 2 || p.ColorCount > 8:
		return &Error{Kind: InvalidParameter, Err: errf("color count must be between 2 and 8, got %d", p.ColorCount)}
	case p.LayerThicknessMM < 0.1 || p.LayerThicknessMM > 0.5:
		return &Error{Kind: InvalidParameter, Err: errf("layer thickness must be between 0.1mm and 0.5mm, got %.3fmm", p.LayerThicknessMM)}
	case p.BaseThicknessMM < 1.0 || p.BaseThicknessMM > 3.0:
		return &Error{Kind: InvalidParameter, Err: errf("base thickness must be between 1.0mm and 3.0mm, got %.3fmm", p.BaseThicknessMM)}
	case p.WidthMM < 20 || p.WidthMM > 200:
		return &Error{Kind: InvalidParameter, Err: errf("width must be between 20mm and 200mm, got %.2fmm", p.WidthMM)}
	case p.HeightMM < 30 || p.HeightMM > 300:
		return &Error{Kind: InvalidParameter, Err: errf("height must be between 30mm and 300mm, got %.2fmm", p.HeightMM)}
	case p.CornerRadiusMM < 0 || p.CornerRadiusMM > 10:
		return &Error{Kind: InvalidParameter, Err: errf("corner radius must be between 0mm and 10mm, got %.2fmm", p.CornerRadiusMM)}
	case p.WidthMM <= p.CornerRadiusMM*2 || p.HeightMM <= p.CornerRadiusMM*2:
		return &Error{Kind: InvalidParameter, Err: errf("corner radius %.2fmm is too large for a %.2fx%.2fmm bookmark", p.CornerRadiusMM, p.WidthMM, p.HeightMM)}
	case p.SimplificationRatio > 1:
		return &Error{Kind: InvalidParameter, Err: errf("simplification ratio must be <= 1, got %f", p.SimplificationRatio)}
	case p.BaseThicknessMM+float64(p.ColorCount-1)*p.LayerThicknessMM > 10:
		return &Error{Kind: InvalidParameter, Err: errf("total stack height %.2fmm (base %.2fmm + %d layer(s) at %.2fmm) exceeds the 10mm printability limit",
			p.BaseThicknessMM+float64(p.ColorCount-1)*p.LayerThicknessMM, p.BaseThicknessMM, p.ColorCount-1, p.LayerThicknessMM)}
	}
	return nil
}
