package domain

// Stroke describes how a connection line is drawn.
type Stroke struct {
	Width      float64 `json:"width" yaml:"width" msgpack:"width"`
	Dash       string  `json:"dash,omitempty" yaml:"dash,omitempty" msgpack:"dash,omitempty"`
	DashOffset float64 `json:"dash_offset,omitempty" yaml:"dash_offset,omitempty" msgpack:"dash_offset,omitempty"`
}

// Resting stroke widths.
const (
	BaseStrokeWidth  = 2.0
	WideStrokeWidth  = 3.5
	ThinStrokeWidth  = 1.0
	DashedPattern    = "8 4"
	DottedPattern    = "2 4"
	BreakDashPattern = "12 3"
)

// WeightFor derives the resting stroke of a connection from its marker and kind.
// Double, parallel and break markers widen the line, dotted ones thin it.
func WeightFor(arrow string, kind ConnectionKind) Stroke {
	s := Stroke{Width: BaseStrokeWidth}

	switch kind {
	case ConnDashed, ConnReverseDashed:
		s.Dash = DashedPattern
	case ConnDouble, ConnReverseDouble, ConnParallel:
		s.Width = WideStrokeWidth
	case ConnBreak:
		s.Width = WideStrokeWidth
		s.Dash = BreakDashPattern
	case ConnDotted, ConnReverseDotted:
		s.Width = ThinStrokeWidth + 0.5
		s.Dash = DottedPattern
	case ConnDottedLine:
		s.Width = ThinStrokeWidth
		s.Dash = DottedPattern
	}

	// The long break form ("->x") reads heavier than the short one.
	if kind == ConnBreak && arrow == "->x" {
		s.Width += 0.5
	}
	return s
}
