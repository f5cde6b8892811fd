package level

import (
	"strings"

	"toycar/internal/assets"
)

// Category is the kind of object a record places.
type Category int

const (
	Unknown Category = iota
	Obstacle
	Signage
	Collectible
)

func (c Category) String() string {
	switch c {
	case Obstacle:
		return "obstacle"
	case Signage:
		return "signage"
	case Collectible:
		return "collectible"
	default:
		return "unknown"
	}
}

// Classification is the outcome of Classify. Entry is set for every category but Unknown.
type Classification struct {
	Category Category
	Name     string
	Entry    assets.Entry
}

// Classifier maps records to categories using the asset catalog.
type Classifier struct {
	Assets            *assets.Registry
	CollectiblePrefix string
}

// Classify never logs or mutates anything. A record with a missing or empty name yields
// *MissingNameError; a name absent from the catalog yields Unknown with *UnknownModelError.
func (c *Classifier) Classify(rec Record) (Classification, error) {
	if rec.Name == nil || *rec.Name == "" {
		return Classification{}, &MissingNameError{Record: rec}
	}
	name := *rec.Name
	entry, ok := c.Assets.Lookup(name)
	if !ok {
		return Classification{Category: Unknown, Name: name}, &UnknownModelError{Name: name}
	}
	cl := Classification{Name: name, Entry: entry}
	switch {
	case c.CollectiblePrefix != "" && strings.HasPrefix(name, c.CollectiblePrefix):
		cl.Category = Collectible
	case entry.Signage:
		cl.Category = Signage
	default:
		cl.Category = Obstacle
	}
	return cl, nil
}
