package parse

import (
	"log/slog"
	"sort"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// DefaultSingleChapterThreshold is the paragraph count at which a lone
// chapter 1 is treated as sequentially numbered.
const DefaultSingleChapterThreshold = 8

// Detector decides whether a statute uses chapter-relative or sequential
// (global) paragraph numbering, based on which paragraph anchors were
// observed under each chapter.
//
// Verified per-statute overrides always win over the heuristic; a warning
// is logged on the first mismatch per statute.
type Detector struct {
	// SingleChapterThreshold is the paragraph count at which a lone
	// chapter 1 is treated as sequential. Long single-chapter laws are
	// almost always globally numbered.
	SingleChapterThreshold int

	// Overrides maps SFS number to a manually verified numbering type.
	Overrides map[string]model.NumberingType

	log    *slog.Logger
	warned map[string]bool
}

// NewDetector creates a numbering detector with the given threshold and
// verified overrides. Overrides may be nil.
func NewDetector(threshold int, overrides map[string]model.NumberingType, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		SingleChapterThreshold: threshold,
		Overrides:              overrides,
		log:                    logger,
		warned:                 map[string]bool{},
	}
}

// Detect applies the numbering heuristic to the observed chapter structure.
//
// Rules:
//  1. No chapters observed: sequential (chapterless).
//  2. With two or more chapters, look at the lowest chapter above 1 that has
//     paragraphs. If its first paragraph is 1 the numbering resets per
//     chapter (relative); otherwise it continues globally (sequential).
//  3. A single chapter that is not chapter 1 signals global numbering.
//  4. A single chapter 1 with at least SingleChapterThreshold paragraphs is
//     sequential, below the threshold relative.
func (d *Detector) Detect(chapters map[int][]int) model.NumberingType {
	if len(chapters) == 0 {
		return model.NumberingSequential
	}

	if len(chapters) >= 2 {
		keys := make([]int, 0, len(chapters))
		for k := range chapters {
			keys = append(keys, k)
		}
		sort.Ints(keys)

		for _, k := range keys {
			if k <= 1 {
				continue
			}
			paragraphs := append([]int(nil), chapters[k]...)
			if len(paragraphs) == 0 {
				continue
			}
			sort.Ints(paragraphs)
			if paragraphs[0] == 1 {
				return model.NumberingRelative
			}
			return model.NumberingSequential
		}
	}

	if len(chapters) == 1 {
		for k := range chapters {
			if k > 1 {
				return model.NumberingSequential
			}
		}
	}

	if len(chapters[1]) >= d.SingleChapterThreshold {
		return model.NumberingSequential
	}
	return model.NumberingRelative
}

// DetectFor runs the heuristic for one statute and applies a verified
// override when configured. On the first disagreement per statute the
// mismatch is logged, then the override wins silently.
func (d *Detector) DetectFor(sfsNr string, chapters map[int][]int) model.NumberingType {
	detected := d.Detect(chapters)

	verified, ok := d.Overrides[sfsNr]
	if !ok {
		return detected
	}

	if verified != detected && !d.warned[sfsNr] {
		d.log.Warn("Numbering type mismatch, verified mapping wins",
			"sfs_nr", sfsNr,
			"verified", string(verified),
			"detected", string(detected),
		)
		d.warned[sfsNr] = true
	}
	return verified
}
