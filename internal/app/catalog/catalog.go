package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEventNotFound is returned for unknown event ids.
	ErrEventNotFound = errors.New("event not found")
	// ErrZoneNotFound is returned when an event has no zone with the given name.
	ErrZoneNotFound = errors.New("zone not found")
	// ErrCompareLimit is returned when more than MaxCompare events are compared.
	ErrCompareLimit = errors.New("too many events to compare")
)

// MaxCompare caps the side-by-side comparison.
const MaxCompare = 3

//go:embed data/events.yaml
var defaultDataset []byte

type dataset struct {
	Events []Event `yaml:"events"`
}

// Catalog is a read-only, id-indexed event list.
type Catalog struct {
	events []Event
	byID   map[int]int
}

// New builds a catalog from events. Duplicate ids are rejected.
func New(events []Event) (*Catalog, error) {
	c := &Catalog{
		events: make([]Event, len(events)),
		byID:   make(map[int]int, len(events)),
	}
	copy(c.events, events)
	for i, e := range c.events {
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate event id %d", e.ID)
		}
		if _, err := ParseDate(e.Date); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.ID, err)
		}
		c.byID[e.ID] = i
	}
	return c, nil
}

// Load decodes a YAML dataset with a top-level "events" list.
func Load(r io.Reader) (*Catalog, error) {
	var ds dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(ds.Events)
}

// LoadFile loads a dataset from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default loads the embedded dataset.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultDataset))
}

// All returns a copy of every event in dataset order.
func (c *Catalog) All() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Len is the number of events.
func (c *Catalog) Len() int {
	return len(c.events)
}

// Get looks up an event by id.
func (c *Catalog) Get(id int) (Event, error) {
	i, ok := c.byID[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return c.events[i], nil
}

// Zone looks up a zone of an event.
func (c *Catalog) Zone(eventID int, name string) (Event, Zone, error) {
	e, err := c.Get(eventID)
	if err != nil {
		return Event{}, Zone{}, err
	}
	z, ok := e.FindZone(name)
	if !ok {
		return Event{}, Zone{}, ErrZoneNotFound
	}
	return e, z, nil
}

// Related returns up to n other events in the same category, most popular first.
func (c *Catalog) Related(id, n int) ([]Event, error) {
	e, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, o := range c.events {
		if o.ID != e.ID && o.Category == e.Category {
			out = append(out, o)
		}
	}
	return top(out, n, byPopularity), nil
}

// Suggested returns up to n popular events whose ids are not excluded.
func (c *Catalog) Suggested(exclude []int, n int) []Event {
	skip := make(map[int]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	var out []Event
	for _, e := range c.events {
		if _, ok := skip[e.ID]; !ok {
			out = append(out, e)
		}
	}
	return top(out, n, byPopularity)
}

// Featured returns the n most popular events.
func (c *Catalog) Featured(n int) []Event {
	return top(c.All(), n, byPopularity)
}

// Trending returns the n most reviewed events.
func (c *Catalog) Trending(n int) []Event {
	return top(c.All(), n, func(a, b Event) bool { return a.ReviewCount > b.ReviewCount })
}

// Compare resolves up to MaxCompare ids in the order given.
func (c *Catalog) Compare(ids []int) ([]Event, error) {
	if len(ids) > MaxCompare {
		return nil, ErrCompareLimit
	}
	out := make([]Event, 0, len(ids))
	for _, id := range ids {
		e, err := c.Get(id)
		if err != nil {
			return nil, fmt.Errorf("compare %d: %w", id, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func byPopularity(a, b Event) bool {
	return a.PopularityScore > b.PopularityScore
}

func top(events []Event, n int, less func(a, b Event) bool) []Event {
	sort.SliceStable(events, func(i, j int) bool { return less(events[i], events[j]) })
	if n >= 0 && len(events) > n {
		events = events[:n]
	}
	if events == nil {
		return []Event{}
	}
	return events
}
