// Package pid binds OBD-II parameter IDs to their response width, metadata
// and decode formula, and resolves (mode, pid) pairs to those descriptors.
package pid

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrNotFound      = errors.New("pid not registered")
	ErrInvalidLength = errors.New("invalid payload length")
	ErrDuplicate     = errors.New("duplicate pid")
)

// Raw is the unsigned word a PID payload is assembled into.
type Raw interface {
	~uint8 | ~uint16 | ~uint32
}

// ResultSize is the expected payload width in bytes, either exact (Min == Max)
// or an inclusive range.
type ResultSize struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

func Exact(n int) ResultSize { return ResultSize{Min: n, Max: n} }

func Between(lo, hi int) ResultSize { return ResultSize{Min: lo, Max: hi} }

func (s ResultSize) IsExact() bool { return s.Min == s.Max }

func (s ResultSize) Contains(n int) bool { return n >= s.Min && n <= s.Max }

func (s ResultSize) String() string {
	if s.IsExact() {
		return fmt.Sprintf("%d", s.Min)
	}
	return fmt.Sprintf("%d..%d", s.Min, s.Max)
}

// Descriptor is the capability set shared by every PID regardless of its
// input width and output type.
type Descriptor interface {
	Mode() byte
	Number() byte
	ResultSize() ResultSize
	Description() string
	Unit() (string, bool)
	// Bounds returns the declared min and max, typed like the decoded value.
	Bounds() (lo, hi any, ok bool)
	// Decode checks the payload width and interprets it.
	Decode(raw []byte) (any, error)
	Info() Info
	String() string

	inputWidth() int
	withMode(mode byte) Descriptor
}

// Info is a serialisable snapshot of a descriptor's metadata.
type Info struct {
	Mode        string     `json:"mode" yaml:"mode"`
	PID         string     `json:"pid" yaml:"pid"`
	Description string     `json:"description" yaml:"description"`
	ResultSize  ResultSize `json:"result_size" yaml:"result_size"`
	Unit        string     `json:"unit,omitempty" yaml:"unit,omitempty"`
	Min         any        `json:"min,omitempty" yaml:"min,omitempty"`
	Max         any        `json:"max,omitempty" yaml:"max,omitempty"`
}

type bounds[Out any] struct {
	min, max Out
}

// PID is a descriptor whose decode function takes a fixed-width word In and
// produces Out.
type PID[In Raw, Out any] struct {
	mode        byte
	number      byte
	size        ResultSize
	description string
	unit        string
	bounds      *bounds[Out]
	interpret   func(In) Out
}

// Define creates a descriptor whose result size is the byte width of In.
func Define[In Raw, Out any](mode, number byte, description string, interpret func(In) Out) *PID[In, Out] {
	return &PID[In, Out]{
		mode:        mode,
		number:      number,
		size:        Exact(width[In]()),
		description: description,
		interpret:   interpret,
	}
}

func (p *PID[In, Out]) WithUnit(unit string) *PID[In, Out] {
	p.unit = unit
	return p
}

func (p *PID[In, Out]) WithBounds(lo, hi Out) *PID[In, Out] {
	p.bounds = &bounds[Out]{min: lo, max: hi}
	return p
}

// WithResultSize accepts payloads shorter than In; they are zero-extended.
func (p *PID[In, Out]) WithResultSize(size ResultSize) *PID[In, Out] {
	p.size = size
	return p
}

func (p *PID[In, Out]) Mode() byte             { return p.mode }
func (p *PID[In, Out]) Number() byte           { return p.number }
func (p *PID[In, Out]) ResultSize() ResultSize { return p.size }
func (p *PID[In, Out]) Description() string    { return p.description }

func (p *PID[In, Out]) Unit() (string, bool) {
	return p.unit, p.unit != ""
}

func (p *PID[In, Out]) Min() (Out, bool) {
	if p.bounds == nil {
		var zero Out
		return zero, false
	}
	return p.bounds.min, true
}

func (p *PID[In, Out]) Max() (Out, bool) {
	if p.bounds == nil {
		var zero Out
		return zero, false
	}
	return p.bounds.max, true
}

func (p *PID[In, Out]) Bounds() (lo, hi any, ok bool) {
	if p.bounds == nil {
		return nil, nil, false
	}
	return p.bounds.min, p.bounds.max, true
}

// Interpret decodes an already assembled word.
func (p *PID[In, Out]) Interpret(raw In) Out {
	return p.interpret(raw)
}

func (p *PID[In, Out]) Decode(raw []byte) (any, error) {
	if !p.size.Contains(len(raw)) {
		return nil, fmt.Errorf("%w: %s expects %s byte(s), got %d", ErrInvalidLength, p, p.size, len(raw))
	}

	var word In
	for _, b := range raw {
		word = word<<8 | In(b)
	}
	return p.interpret(word), nil
}

func (p *PID[In, Out]) Info() Info {
	info := Info{
		Mode:        fmt.Sprintf("%02X", p.mode),
		PID:         fmt.Sprintf("%02X", p.number),
		Description: p.description,
		ResultSize:  p.size,
		Unit:        p.unit,
	}
	if p.bounds != nil {
		info.Min = p.bounds.min
		info.Max = p.bounds.max
	}
	return info
}

func (p *PID[In, Out]) String() string {
	return fmt.Sprintf("PID(mode=%02X, pid=%02X, result_size=%s)", p.mode, p.number, p.size)
}

func (p *PID[In, Out]) inputWidth() int {
	return width[In]()
}

func (p *PID[In, Out]) withMode(mode byte) Descriptor {
	c := *p
	c.mode = mode
	return &c
}

// width returns the byte width of In.
func width[In Raw]() int {
	var zero In
	return bits.Len64(uint64(^zero)) / 8
}
