package matching

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/logging"
)

// parallelThreshold is the candidate count above which scoring is spread
// over GOMAXPROCS goroutines.
const parallelThreshold = 512

// Match is one gallery entry that passed the threshold
type Match struct {
	ID    uuid.UUID
	Score float32
}

// IndexProcessor runs version-checked similarity queries with one comparer.
// It is stateless and safe for concurrent use.
type IndexProcessor struct {
	log      logrus.FieldLogger
	comparer IndexComparer
}

// NewIndexProcessor binds a processor to comparer
func NewIndexProcessor(log logrus.FieldLogger, comparer IndexComparer) (*IndexProcessor, error) {
	log = logging.OrDiscard(log)
	if comparer == nil {
		return nil, errors.New("index comparer is required")
	}

	log.WithField("index_type", comparer.IndexType()).Info("Creating index processor")

	return &IndexProcessor{
		log:      log,
		comparer: comparer,
	}, nil
}

// IndexType returns the only version this processor accepts
func (p *IndexProcessor) IndexType() string {
	return p.comparer.IndexType()
}

// MatchOneToOne scores a against b
func (p *IndexProcessor) MatchOneToOne(a, b face.FaceIndex) (float32, error) {
	if err := p.checkVersions(a, b); err != nil {
		return 0, err
	}
	return p.comparer.Compare(a, b)
}

// MatchOneToManyWithThreshold returns every candidate scoring at least
// threshold, best first (ties ordered by ID). A single incompatible
// candidate fails the whole call.
func (p *IndexProcessor) MatchOneToManyWithThreshold(query face.FaceIndex, candidates map[uuid.UUID]face.FaceIndex, threshold float32) ([]Match, error) {
	if math.IsNaN(float64(threshold)) {
		return nil, fmt.Errorf("%w: NaN", ErrInvalidThreshold)
	}
	if err := p.checkVersions(query, query); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	indexes := make([]face.FaceIndex, 0, len(candidates))
	for id, idx := range candidates {
		if err := p.checkVersions(query, idx); err != nil {
			return nil, fmt.Errorf("candidate %s: %w", id, err)
		}
		ids = append(ids, id)
		indexes = append(indexes, idx)
	}

	scores, err := p.scoreAll(query, indexes)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0)
	for i, score := range scores {
		if !(score >= threshold) {
			continue
		}
		matches = append(matches, Match{ID: ids[i], Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return bytes.Compare(matches[i].ID[:], matches[j].ID[:]) < 0
	})

	p.log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"matches":    len(matches),
		"threshold":  threshold,
	}).Debug("Matched one to many")

	return matches, nil
}

// BestMatch returns the highest scoring candidate at or above threshold
func (p *IndexProcessor) BestMatch(query face.FaceIndex, candidates map[uuid.UUID]face.FaceIndex, threshold float32) (Match, bool, error) {
	matches, err := p.MatchOneToManyWithThreshold(query, candidates, threshold)
	if err != nil || len(matches) == 0 {
		return Match{}, false, err
	}
	return matches[0], true, nil
}

// MatchToMany scores query against every candidate, keeping input order
func (p *IndexProcessor) MatchToMany(query face.FaceIndex, candidates []face.FaceIndex) ([]float32, error) {
	if err := p.checkVersions(query, query); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	for i, idx := range candidates {
		if err := p.checkVersions(query, idx); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
	}
	return p.scoreAll(query, candidates)
}

// scoreAll compares query with every candidate. Versions must already be
// checked.
func (p *IndexProcessor) scoreAll(query face.FaceIndex, candidates []face.FaceIndex) ([]float32, error) {
	scores := make([]float32, len(candidates))

	if len(candidates) <= parallelThreshold {
		for i, idx := range candidates {
			score, err := p.comparer.Compare(query, idx)
			if err != nil {
				return nil, fmt.Errorf("candidate %d: %w", i, err)
			}
			scores[i] = score
		}
		return scores, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(candidates) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(candidates); start += chunk {
		end := min(start+chunk, len(candidates))
		g.Go(func() error {
			for i := start; i < end; i++ {
				score, err := p.comparer.Compare(query, candidates[i])
				if err != nil {
					return fmt.Errorf("candidate %d: %w", i, err)
				}
				scores[i] = score
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}

func (p *IndexProcessor) checkVersions(a, b face.FaceIndex) error {
	if a.Version() != b.Version() || a.Version() != p.comparer.IndexType() {
		return &VersionMismatchError{Left: a.Version(), Right: b.Version(), Expected: p.comparer.IndexType()}
	}
	return nil
}
