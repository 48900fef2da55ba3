package dashboard

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/yaron8/telemetry-dashboard/telemetrics"
)

// Wildcard disables filtering on a dimension.
const Wildcard = "all"

var ErrUnknownOption = errors.New("unknown filter option")

// Selector is one filter dimension: a growing option list and the selected value.
type Selector struct {
	options  []string
	known    map[string]struct{}
	selected string
}

func NewSelector() *Selector {
	return &Selector{
		options:  []string{Wildcard},
		known:    map[string]struct{}{Wildcard: {}},
		selected: Wildcard,
	}
}

// RegisterIfAbsent appends value as an option unless it is already present.
// It reports whether the option was added.
func (s *Selector) RegisterIfAbsent(value string) bool {
	if _, ok := s.known[value]; ok {
		return false
	}
	s.known[value] = struct{}{}
	s.options = append(s.options, value)
	return true
}

// Options returns the options in registration order, wildcard first.
func (s *Selector) Options() []string {
	out := make([]string, len(s.options))
	copy(out, s.options)
	return out
}

func (s *Selector) Selected() string { return s.selected }

// Select changes the selected option. Only registered options can be selected.
func (s *Selector) Select(value string) error {
	if _, ok := s.known[value]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}
	s.selected = value
	return nil
}

// Matches reports whether id passes this selector.
func (s *Selector) Matches(id int) bool {
	return s.selected == Wildcard || s.selected == strconv.Itoa(id)
}

// FilterState gates which measurements reach the bar chart and the table.
type FilterState struct {
	Switch *Selector
	Port   *Selector
}

func NewFilterState() *FilterState {
	return &FilterState{
		Switch: NewSelector(),
		Port:   NewSelector(),
	}
}

// Observe records the ids of stat as selectable options.
func (f *FilterState) Observe(stat telemetrics.PortStat) {
	f.Switch.RegisterIfAbsent(strconv.Itoa(stat.DPID))
	f.Port.RegisterIfAbsent(strconv.Itoa(stat.PortNo))
}

// Visible reports whether stat passes both selectors.
func (f *FilterState) Visible(stat telemetrics.PortStat) bool {
	return f.Switch.Matches(stat.DPID) && f.Port.Matches(stat.PortNo)
}
