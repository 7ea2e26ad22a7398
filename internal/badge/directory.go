package badge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Person is one configured timesheet owner.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Badge maps a physical credential UID to a person.
type Badge struct {
	UID      string `json:"uid"`
	PersonID string `json:"peopleID"`
}

type roster struct {
	Badges []Badge  `json:"badges"`
	People []Person `json:"people"`
}

// Directory holds the badge and person lookups for the process lifetime.
// It is immutable after construction.
type Directory struct {
	badgeToPerson map[string]string
	people        map[string]Person
}

// NormalizeUID canonicalizes a raw badge UID for lookups.
func NormalizeUID(uid string) string {
	return strings.ToLower(strings.TrimSpace(uid))
}

func New(badges []Badge, people []Person) *Directory {
	dir := &Directory{
		badgeToPerson: make(map[string]string, len(badges)),
		people:        make(map[string]Person, len(people)),
	}
	for _, p := range people {
		dir.people[p.ID] = p
	}
	for _, b := range badges {
		dir.badgeToPerson[NormalizeUID(b.UID)] = b.PersonID
	}
	return dir
}

// Load reads the badge/person roster from a JSON file.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	var r roster
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return New(r.Badges, r.People), nil
}

// Known reports whether the normalized UID belongs to a configured badge.
func (d *Directory) Known(uid string) bool {
	_, ok := d.badgeToPerson[uid]
	return ok
}

// PersonID returns the person id a normalized badge UID maps to.
func (d *Directory) PersonID(uid string) (string, bool) {
	id, ok := d.badgeToPerson[uid]
	return id, ok
}

// Person returns the person record for an id.
func (d *Directory) Person(id string) (Person, bool) {
	p, ok := d.people[id]
	return p, ok
}

// UIDs returns every configured badge UID.
func (d *Directory) UIDs() []string {
	uids := make([]string, 0, len(d.badgeToPerson))
	for uid := range d.badgeToPerson {
		uids = append(uids, uid)
	}
	return uids
}

// People returns every configured person.
func (d *Directory) People() []Person {
	people := make([]Person, 0, len(d.people))
	for _, p := range d.people {
		people = append(people, p)
	}
	return people
}

func (d *Directory) BadgeCount() int {
	return len(d.badgeToPerson)
}

func (d *Directory) PersonCount() int {
	return len(d.people)
}
