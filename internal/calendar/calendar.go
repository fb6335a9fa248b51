// Package calendar manages device reminders: a dated, optionally repeating
// note with the devices it concerns.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingDate  = errors.New("reminder date required")
	ErrInvalidDate  = errors.New("reminder date must be YYYY-MM-DD")
	ErrMissingTitle = errors.New("reminder title required")
	ErrInvalidTime  = errors.New("reminder time out of range")
)

const dateLayout = "2006-01-02"

// Device is an entry of the reminder device catalog.
type Device struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// DefaultDevices is the catalog used when none is configured.
func DefaultDevices() []Device {
	return []Device{
		{Name: "xiaomi", Type: "vacuum"},
		{Name: "Daikin", Type: "aircon"},
	}
}

// Reminder is a stored calendar entry.
type Reminder struct {
	ID          string    `gorm:"primaryKey"`
	At          time.Time `gorm:"index"`
	Title       string
	Description string
	Repeat      bool
	Devices     []string `gorm:"serializer:json"`
}

// Draft is the add-reminder form.
type Draft struct {
	Date        string
	Hour        int
	Minute      int
	Title       string
	Description string
	Repeat      bool
}

// NewDraft returns a blank form preset to the current hour and minute.
func NewDraft(now time.Time) Draft {
	return Draft{Hour: now.Hour(), Minute: now.Minute()}
}

// Planner owns the favorites and selection sets and writes reminders to a
// Store. It is safe for concurrent use.
type Planner struct {
	mu        sync.Mutex
	store     Store
	catalog   []Device
	favorites []string
	selected  []string
	loc       *time.Location
	newID     func() string
}

// NewPlanner builds a Planner. A nil catalog uses DefaultDevices.
func NewPlanner(store Store, catalog []Device) *Planner {
	if len(catalog) == 0 {
		catalog = DefaultDevices()
	}
	return &Planner{
		store:   store,
		catalog: slices.Clone(catalog),
		loc:     time.Local,
		newID:   func() string { return uuid.NewString() },
	}
}

// Catalog returns the selectable devices.
func (p *Planner) Catalog() []Device { return slices.Clone(p.catalog) }

// ToggleFavorite adds or removes a device from favorites.
func (p *Planner) ToggleFavorite(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.favorites = toggleMember(p.favorites, name)
}

// ToggleSelected adds or removes a device from the current selection.
func (p *Planner) ToggleSelected(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = toggleMember(p.selected, name)
}

func (p *Planner) IsFavorite(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.favorites, name)
}

func (p *Planner) IsSelected(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.selected, name)
}

// Favorites returns the favorited devices in the order they were added.
func (p *Planner) Favorites() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.favorites)
}

// Attachable returns the devices a new reminder would carry: favorited and
// selected.
func (p *Planner) Attachable() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attachableLocked()
}

func (p *Planner) attachableLocked() []string {
	var out []string
	for _, name := range p.favorites {
		if slices.Contains(p.selected, name) {
			out = append(out, name)
		}
	}
	return out
}

// Add validates d, stores a reminder and clears the device selection.
func (p *Planner) Add(ctx context.Context, d Draft) (Reminder, error) {
	dateText := strings.TrimSpace(d.Date)
	if dateText == "" {
		return Reminder{}, ErrMissingDate
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Reminder{}, ErrMissingTitle
	}
	day, err := time.ParseInLocation(dateLayout, dateText, p.loc)
	if err != nil {
		return Reminder{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateText)
	}
	if d.Hour < 0 || d.Hour > 23 || d.Minute < 0 || d.Minute > 59 {
		return Reminder{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, d.Hour, d.Minute)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	r := Reminder{
		ID:          p.newID(),
		At:          time.Date(day.Year(), day.Month(), day.Day(), d.Hour, d.Minute, 0, 0, p.loc),
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Repeat:      d.Repeat,
		Devices:     p.attachableLocked(),
	}
	if err := p.store.Add(ctx, r); err != nil {
		return Reminder{}, err
	}
	p.selected = nil
	return r, nil
}

// Delete removes a reminder by ID.
func (p *Planner) Delete(ctx context.Context, id string) error {
	return p.store.Delete(ctx, id)
}

// List returns reminders ordered by time.
func (p *Planner) List(ctx context.Context) ([]Reminder, error) {
	return p.store.List(ctx)
}

func toggleMember(set []string, name string) []string {
	if i := slices.Index(set, name); i >= 0 {
		return slices.Delete(set, i, i+1)
	}
	return append(set, name)
}

func sortReminders(rs []Reminder) {
	slices.SortStableFunc(rs, func(a, b Reminder) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
