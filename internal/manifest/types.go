package manifest

// Manifest is the aggregated index of every data file the front end loads.
// Field order is the key order of data/manifest.json.
type Manifest struct {
	LUs           []string `json:"lus"`           // data/lus/*.json
	Frames        []string `json:"frames"`        // data/frames/*.json
	Constructions []string `json:"constructions"` // data/constructions/*.json, empty when the directory is absent
}

// Category describes one scanned data directory.
type Category struct {
	Key      string // manifest key ("lus", "frames", "constructions")
	Dir      string // directory relative to the root
	Required bool   // missing directory is an error when true
}

// Keys of the three categories, in manifest order.
const (
	KeyLUs           = "lus"
	KeyFrames        = "frames"
	KeyConstructions = "constructions"
)

// DefaultCategories returns the repository layout: lexical units and frames
// are required, constructions may be absent in older checkouts.
func DefaultCategories() []Category {
	return []Category{
		{Key: KeyLUs, Dir: "data/lus", Required: true},
		{Key: KeyFrames, Dir: "data/frames", Required: true},
		{Key: KeyConstructions, Dir: "data/constructions", Required: false},
	}
}

// New returns a manifest with every list initialized, so empty categories
// encode as [] rather than null.
func New() *Manifest {
	return &Manifest{
		LUs:           []string{},
		Frames:        []string{},
		Constructions: []string{},
	}
}

// Set stores the file list for the given category key.
// Unknown keys are ignored and reported as false.
func (m *Manifest) Set(key string, files []string) bool {
	if files == nil {
		files = []string{}
	}
	switch key {
	case KeyLUs:
		m.LUs = files
	case KeyFrames:
		m.Frames = files
	case KeyConstructions:
		m.Constructions = files
	default:
		return false
	}
	return true
}

// Count returns the total number of files across all categories.
func (m *Manifest) Count() int {
	return len(m.LUs) + len(m.Frames) + len(m.Constructions)
}
