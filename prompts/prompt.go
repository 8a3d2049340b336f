package prompts

import (
	"fmt"
	"strings"
)

// Prompt is implemented by every model that renders natural-language input for an agent or LLM step
type Prompt interface {
	Prompt() (string, error)
}

// Region identifies one of the production clusters investigated in parallel
type Region string

const (
	RegionNA Region = "NA"
	RegionEU Region = "EU"
)

// Regions lists the investigated clusters in reporting order
var Regions = []Region{RegionNA, RegionEU}

// Name is the human readable region name
func (r Region) Name() string {
	switch r {
	case RegionNA:
		return "North America"
	case RegionEU:
		return "Europe"
	default:
		return string(r)
	}
}

// Lower is the lowercase form used in step, output and file names
func (r Region) Lower() string {
	return strings.ToLower(string(r))
}

func (r Region) valid() error {
	if r != RegionNA && r != RegionEU {
		return fmt.Errorf("unsupported region %q", string(r))
	}
	return nil
}

// lines joins prompt lines with newlines
func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}
