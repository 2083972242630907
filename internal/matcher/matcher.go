// Package matcher classifies a probe vector against all stored face
// encodings into a confidence tier. The scan is exhaustive and exact: every
// stored encoding is compared, ranked descending, and the best score decides
// the tier.
package matcher

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/kozaktomas/face-attendance/internal/store"
)

// Tier is the confidence classification of a match result.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// maxMediumCandidates caps the candidate list returned for a medium match.
const maxMediumCandidates = 3

// Thresholds are the two ordered cut points for tier classification,
// both in [0, 1] with Medium < High.
type Thresholds struct {
	High   float64
	Medium float64
}

// Validate reports whether the cut points are usable.
func (t Thresholds) Validate() error {
	if t.Medium < 0 || t.High > 1 || t.Medium >= t.High {
		return fmt.Errorf("thresholds must satisfy 0 <= medium < high <= 1, got medium=%v high=%v", t.Medium, t.High)
	}
	return nil
}

// Candidate is one matched encoding with its joined employee fields.
// Confidence is always finite.
type Candidate struct {
	EncodingID   int64   `json:"encoding_id"`
	EmployeeID   int64   `json:"employee_id"`
	Name         string  `json:"name"`
	Department   string  `json:"department"`
	Position     string  `json:"position"`
	EmployeeCode string  `json:"employee_code"`
	ImagePath    string  `json:"image_path"`
	Confidence   float64 `json:"confidence"`
}

// Result is a tiered match outcome. Best is set for TierHigh only;
// Candidates (1 to 3, descending by confidence) for TierMedium only.
type Result struct {
	Tier       Tier        `json:"tier"`
	Best       *Candidate  `json:"best,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// FaceSource provides the joined face encodings to scan.
type FaceSource interface {
	ListAllFaceEncodings(ctx context.Context) ([]store.FaceWithEmployee, error)
}

// Matcher compares probe vectors against every stored encoding.
type Matcher struct {
	faces      FaceSource
	thresholds Thresholds
	imageOK    func(path string) bool
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithImageCheck overrides the availability check for an encoding's backing
// image. The default checks that the file exists on disk.
func WithImageCheck(check func(path string) bool) Option {
	return func(m *Matcher) {
		m.imageOK = check
	}
}

// New creates a matcher over the given face source.
func New(faces FaceSource, thresholds Thresholds, opts ...Option) *Matcher {
	m := &Matcher{
		faces:      faces,
		thresholds: thresholds,
		imageOK:    imageFileExists,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func imageFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Match scans all stored encodings against the probe and classifies the
// outcome. Encodings whose backing image is unavailable are skipped, not
// treated as errors. An empty store always yields TierLow.
func (m *Matcher) Match(ctx context.Context, probe []float64) (*Result, error) {
	faces, err := m.faces.ListAllFaceEncodings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading face encodings: %w", err)
	}

	candidates := make([]Candidate, 0, len(faces))
	for _, face := range faces {
		if m.imageOK != nil && !m.imageOK(face.ImagePath) {
			continue
		}
		candidates = append(candidates, Candidate{
			EncodingID:   face.EncodingID,
			EmployeeID:   face.EmployeeID,
			Name:         face.Name,
			Department:   face.Department,
			Position:     face.Position,
			EmployeeCode: face.EmployeeCode,
			ImagePath:    face.ImagePath,
			Confidence:   CosineSimilarity(probe, face.Vector),
		})
	}

	if len(candidates) == 0 {
		return &Result{Tier: TierLow}, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	best := candidates[0]
	switch {
	case best.Confidence >= m.thresholds.High:
		return &Result{Tier: TierHigh, Best: &best}, nil
	case best.Confidence >= m.thresholds.Medium:
		band := candidates
		for i, c := range band {
			if c.Confidence < m.thresholds.Medium {
				band = band[:i]
				break
			}
		}
		if len(band) > maxMediumCandidates {
			band = band[:maxMediumCandidates]
		}
		return &Result{Tier: TierMedium, Candidates: band}, nil
	default:
		return &Result{Tier: TierLow}, nil
	}
}
