package domain

// Resolution labels of the rendition catalog
const (
	Resolution1080p = "1080p"
	Resolution720p  = "720p"
	Resolution480p  = "480p"
)

// SupportedCodec the only source codec the pipeline accepts
const SupportedCodec = "h264"

// RenditionSpec one catalog entry of the adaptive-streaming ladder
type RenditionSpec struct {
	Resolution   string `json:"resolution"`
	TargetHeight int    `json:"targetHeight"`
	Scale        string `json:"scale"`
	CRF          int    `json:"crf"`
	MinBitrate   int    `json:"minBitrateKbps"`
}

// Catalog ordered highest tier first
var Catalog = []RenditionSpec{
	{Resolution: Resolution1080p, TargetHeight: 1080, Scale: "1920:1080", CRF: 23, MinBitrate: 3000},
	{Resolution: Resolution720p, TargetHeight: 720, Scale: "1280:720", CRF: 26, MinBitrate: 1500},
	{Resolution: Resolution480p, TargetHeight: 480, Scale: "854:480", CRF: 28, MinBitrate: 800},
}

// Resolutions returns the catalog labels in catalog order
func Resolutions() []string {
	out := make([]string, 0, len(Catalog))
	for _, r := range Catalog {
		out = append(out, r.Resolution)
	}
	return out
}

// LowestRendition the fallback tier
func LowestRendition() RenditionSpec {
	return Catalog[len(Catalog)-1]
}

// SourceInfo the probed properties admission looks at, BitrateBps 0 means unknown
type SourceInfo struct {
	Codec      string
	Width      int
	Height     int
	BitrateBps int64
}

// Admits reports whether the source meets the tier's height and bitrate floor
func (r RenditionSpec) Admits(src SourceInfo) bool {
	if src.Height < r.TargetHeight {
		return false
	}
	// compared in bps, a known bitrate under 1 kbps must not read as unknown
	return src.BitrateBps <= 0 || src.BitrateBps >= int64(r.MinBitrate)*1000
}

// AdmissibleRenditions walks the catalog and never returns an empty set
func AdmissibleRenditions(src SourceInfo) []RenditionSpec {
	var out []RenditionSpec
	seen := make(map[string]bool, len(Catalog))
	for _, r := range Catalog {
		if seen[r.Resolution] || !r.Admits(src) {
			continue
		}
		seen[r.Resolution] = true
		out = append(out, r)
	}
	if len(out) == 0 {
		out = append(out, LowestRendition())
	}
	return out
}
