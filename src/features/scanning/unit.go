package scanning

// Unit is one mergeable disc image: a CUE sheet plus the multi-track BIN
// files it references, all living in the same directory. Units are immutable
// after discovery.
type Unit struct {
	// Name is the base name of the merged output pair.
	Name string `json:"name"`
	// Directory is the absolute path of the unit's working directory.
	Directory string `json:"directory"`
	// CueFile is the absolute path of the source CUE sheet.
	CueFile string `json:"cueFile"`
	// TrackFiles are the referenced track filenames in CUE sheet order.
	// Order defines concatenation order for the merge tool.
	TrackFiles []string `json:"trackFiles"`
	// StagingDir is the backup directory name for this unit, relative to
	// Directory. Directories holding a single CUE sheet use "orig";
	// multi-CUE directories get one keyed per sheet so backups never collide.
	StagingDir string `json:"stagingDir"`
}

// Stats summarizes one scan pass.
type Stats struct {
	Directories int `json:"directories"`
	CueSheets   int `json:"cueSheets"`
	Units       int `json:"units"`
	// NoOp counts single-track sheets where there is nothing to merge.
	NoOp int `json:"noOp"`
	// Discarded counts candidates dropped for missing tracks or empty sheets.
	Discarded int `json:"discarded"`
	// MalformedLines counts FILE entries without a quoted filename.
	MalformedLines int `json:"malformedLines"`
}
