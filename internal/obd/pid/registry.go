package pid

import (
	"fmt"
	"slices"
	"sync"
)

type key struct {
	mode, pid byte
}

// Registry resolves (mode, pid) pairs to descriptors. It is immutable once
// built and safe for concurrent use.
type Registry struct {
	byKey  map[key]Descriptor
	byMode map[byte][]Descriptor
	modes  []byte
}

// New builds a registry. Duplicate (mode, pid) pairs and descriptors whose
// result size does not fit their input word are rejected.
func New(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		byKey:  make(map[key]Descriptor, len(descs)),
		byMode: make(map[byte][]Descriptor),
	}

	for _, d := range descs {
		k := key{d.Mode(), d.Number()}
		if prev, ok := r.byKey[k]; ok {
			return nil, fmt.Errorf("%w: %q and %q both claim mode %02X pid %02X",
				ErrDuplicate, prev.Description(), d.Description(), k.mode, k.pid)
		}

		size := d.ResultSize()
		if size.Min < 1 || size.Min > size.Max || size.Max > d.inputWidth() {
			return nil, fmt.Errorf("%s: result size %s does not fit a %d byte word", d, size, d.inputWidth())
		}

		r.byKey[k] = d
		if _, ok := r.byMode[k.mode]; !ok {
			r.modes = append(r.modes, k.mode)
		}
		r.byMode[k.mode] = append(r.byMode[k.mode], d)
	}
	slices.Sort(r.modes)
	for _, descs := range r.byMode {
		slices.SortFunc(descs, func(a, b Descriptor) int { return int(a.Number()) - int(b.Number()) })
	}

	return r, nil
}

// MustNew is New for tables defined at compile time.
func MustNew(descs ...Descriptor) *Registry {
	r, err := New(descs...)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	descs := Mode01()
	descs = append(descs, Mode02()...)
	return MustNew(descs...)
})

// Default returns the registry of every PID this package knows.
func Default() *Registry {
	return defaultRegistry()
}

// Lookup returns the descriptor registered for (mode, pid).
func (r *Registry) Lookup(mode, pid byte) (Descriptor, error) {
	d, ok := r.byKey[key{mode, pid}]
	if !ok {
		return nil, fmt.Errorf("%w: mode %02X pid %02X", ErrNotFound, mode, pid)
	}
	return d, nil
}

// All returns the descriptors of a mode by ascending PID.
func (r *Registry) All(mode byte) []Descriptor {
	return slices.Clone(r.byMode[mode])
}

func (r *Registry) Modes() []byte {
	return slices.Clone(r.modes)
}

// Decode resolves (mode, pid) and decodes raw through its descriptor.
func (r *Registry) Decode(mode, pid byte, raw []byte) (Reading, error) {
	d, err := r.Lookup(mode, pid)
	if err != nil {
		return Reading{}, err
	}

	v, err := d.Decode(raw)
	if err != nil {
		return Reading{}, err
	}

	unit, _ := d.Unit()
	return Reading{
		Mode:        mode,
		PID:         pid,
		Description: d.Description(),
		Unit:        unit,
		Value:       v,
	}, nil
}

// Supported keeps the pids that have a descriptor in mode, in the given order.
func (r *Registry) Supported(mode byte, pids []uint8) []Descriptor {
	var out []Descriptor
	for _, p := range pids {
		if d, ok := r.byKey[key{mode, p}]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Reading is a decoded value together with the metadata needed to show it.
type Reading struct {
	Mode        byte   `json:"mode" yaml:"mode"`
	PID         byte   `json:"pid" yaml:"pid"`
	Description string `json:"description" yaml:"description"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Value       any    `json:"value" yaml:"value"`
}

// Key is the "MMPP" identifier of the reading, e.g. "010C".
func (r Reading) Key() string {
	return fmt.Sprintf("%02X%02X", r.Mode, r.PID)
}

// ValueText renders the value alone. Floats get two decimals.
func (r Reading) ValueText() string {
	switch x := r.Value.(type) {
	case float64:
		return fmt.Sprintf("%.2f", x)
	case []uint8:
		return formatPIDs(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// FormatValue renders the value with its unit.
func (r Reading) FormatValue() string {
	v := r.ValueText()
	if r.Unit == "" {
		return v
	}
	return v + " " + r.Unit
}

func (r Reading) String() string {
	return fmt.Sprintf("%s %s: %s", r.Key(), r.Description, r.FormatValue())
}

func formatPIDs(pids []uint8) string {
	s := "["
	for i, p := range pids {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%02X", p)
	}
	return s + "]"
}
