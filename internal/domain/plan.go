package domain

import "time"

const (
	ManifestName   = "omitted_files.txt"
	TempTreeSuffix = "_proxy"
)

type PlanEntry struct {
	Camera     string
	Name       string
	SourcePath string
	Category   Category
	Size       int64
}

type CameraPlan struct {
	Name      string
	SourceDir string
	Entries   []PlanEntry
}

type ProxyPlan struct {
	Shoot    string
	ShootDir string
	Cameras  []CameraPlan
	// Omitted holds bare filenames in encounter order.
	Omitted    []string
	VideoCount int
	ImageCount int
	CopyCount  int
	Warnings   []string
}

// Total is the number of entries that will be staged.
func (p ProxyPlan) Total() int {
	total := 0
	for _, camera := range p.Cameras {
		total += len(camera.Entries)
	}
	return total
}

type ProxyItem struct {
	Camera     string
	SourceName string
	// Name is the filename inside the destination camera dir.
	Name       string
	SourcePath string
	TargetPath string
	Category   Category
	Transcoded bool
	SourceSize int64
	OutputSize int64
	CapturedAt time.Time
}

type RunReport struct {
	Shoot       string
	Destination string
	Cameras     []string
	Items       []ProxyItem
	Omitted     []string
	Warnings    []string
}

type CameraSummary struct {
	Name       string
	Transcoded int
	Copied     int
	SourceSize int64
	OutputSize int64
}

// Summaries aggregates staged items per camera, in camera order.
func (r RunReport) Summaries() []CameraSummary {
	index := make(map[string]int, len(r.Cameras))
	summaries := make([]CameraSummary, 0, len(r.Cameras))
	for _, name := range r.Cameras {
		index[name] = len(summaries)
		summaries = append(summaries, CameraSummary{Name: name})
	}
	for _, item := range r.Items {
		i, ok := index[item.Camera]
		if !ok {
			index[item.Camera] = len(summaries)
			i = len(summaries)
			summaries = append(summaries, CameraSummary{Name: item.Camera})
		}
		if item.Transcoded {
			summaries[i].Transcoded++
		} else {
			summaries[i].Copied++
		}
		summaries[i].SourceSize += item.SourceSize
		summaries[i].OutputSize += item.OutputSize
	}
	return summaries
}
