package domain

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// ProductMPD is the distinguished product whose artifact carries metadata.
const ProductMPD = "MPD"

// Artifact is one fetched GeoJSON document. The geometry is opaque to this
// service; only the MPD metadata attribute is ever inspected.
type Artifact = json.RawMessage

// ArtifactBag maps product ID to its fetched artifact. A bag is built fresh
// on every submission and replaces the previous one wholesale.
type ArtifactBag map[string]Artifact

// NumberString is an MPD sequence number that may arrive as a zero-padded
// string or a bare integer. It normalizes to the padded wire form.
type NumberString string

func (n *NumberString) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = ""
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parse MPD number %q: %w", s, err)
	}
	*n = NumberString(PadNumber(v))
	return nil
}

// Metadata is the verification summary attached to an MPD artifact.
type Metadata struct {
	MPDNumber  NumberString `json:"MPD_number"`
	Tag        string       `json:"TAG"`
	ValidDate  string       `json:"valid_date"`
	ValidStart string       `json:"valid_start"`
	ValidEnd   string       `json:"valid_end"`

	MaxRainAccumulation float64 `json:"Max_Rain_Accumulation"`
	MaxRainRate         float64 `json:"Max_Rain_Rate"`
	MaxUnitQ            float64 `json:"Max_Unit_Q"`
	MeanUnitQ           float64 `json:"Mean_Unit_Q"`
	FractionalCoverage  float64 `json:"FCOV"`
	CSI                 float64 `json:"CSI"`
	Interest            float64 `json:"INTEREST"`
	CentroidDistance    float64 `json:"CENTROID_DIST"`
	GSS                 float64 `json:"GSS"`
}

// ValidDay returns the calendar date portion of valid_date, which arrives as
// "YYYY-MM-DD HH:MM:SS".
func (m *Metadata) ValidDay() (string, bool) {
	if m == nil || m.ValidDate == "" {
		return "", false
	}
	day, _, _ := strings.Cut(m.ValidDate, " ")
	return day, true
}

// ExtractMetadata pulls the top-level metadata attribute out of an MPD
// artifact. The second return is false when the document has none.
func ExtractMetadata(doc Artifact) (*Metadata, bool, error) {
	var envelope struct {
		Metadata *Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(doc, &envelope); err != nil {
		return nil, false, fmt.Errorf("decode MPD document: %w", err)
	}
	if envelope.Metadata == nil {
		return nil, false, nil
	}
	return envelope.Metadata, true, nil
}
