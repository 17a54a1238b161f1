package field

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/snaphome/config"
)

// CellRecord is one row of field.csv.
type CellRecord struct {
	X               int     `csv:"x"`
	Y               int     `csv:"y"`
	VX              float64 `csv:"vx"`
	VY              float64 `csv:"vy"`
	Status          string  `csv:"status"`
	AngularErrorDeg string  `csv:"angular_error_deg"` // empty when undefined
	Error           string  `csv:"error"`
}

// SummaryRecord is one row of summary.csv.
type SummaryRecord struct {
	RunID             string  `csv:"run_id"`
	HomeX             int     `csv:"home_x"`
	HomeY             int     `csv:"home_y"`
	TurningWeight     float64 `csv:"turning_weight"`
	PositioningWeight float64 `csv:"positioning_weight"`
	TurningSign       float64 `csv:"turning_sign"`
	Cells             int     `csv:"cells"`
	Evaluated         int     `csv:"evaluated"`
	Skipped           int     `csv:"skipped"`
	Failed            int     `csv:"failed"`
	Measured          int     `csv:"measured"`
	MeanErrorDeg      string  `csv:"mean_error_deg"`
	StdErrorDeg       string  `csv:"std_error_deg"`
	GridMeanErrorDeg  float64 `csv:"grid_mean_error_deg"`
}

// Records converts the field's cells to CSV rows.
func (f *Field) Records() []CellRecord {
	out := make([]CellRecord, len(f.Cells))
	for i, c := range f.Cells {
		r := CellRecord{
			X:               c.Position.X,
			Y:               c.Position.Y,
			VX:              c.Vector.X,
			VY:              c.Vector.Y,
			Status:          c.Status.String(),
			AngularErrorDeg: formatDegrees(c.AngularError),
		}
		if c.Err != nil {
			r.Error = c.Err.Error()
		}
		out[i] = r
	}
	return out
}

// SummaryRecord converts the field's summary to a CSV row.
func (f *Field) SummaryRecord() SummaryRecord {
	s := f.Summary
	return SummaryRecord{
		RunID:             s.RunID,
		HomeX:             f.Home.X,
		HomeY:             f.Home.Y,
		TurningWeight:     f.Params.TurningWeight,
		PositioningWeight: f.Params.PositioningWeight,
		TurningSign:       f.Params.TurningSign,
		Cells:             s.Cells,
		Evaluated:         s.Evaluated,
		Skipped:           s.Skipped,
		Failed:            s.Failed,
		Measured:          s.Measured,
		MeanErrorDeg:      formatDegrees(s.MeanAngularError),
		StdErrorDeg:       formatDegrees(s.StdAngularError),
		GridMeanErrorDeg:  s.GridMeanAngularError * 180 / math.Pi,
	}
}

func formatDegrees(rad float64) string {
	if math.IsNaN(rad) {
		return ""
	}
	return strconv.FormatFloat(rad*180/math.Pi, 'f', 4, 64)
}

// OutputManager writes field results to a directory.
type OutputManager struct {
	dir         string
	fieldFile   *os.File
	summaryFile *os.File

	fieldWritten         bool
	summaryHeaderWritten bool
}

// NewOutputManager creates dir and opens field.csv and summary.csv.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "field.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating field.csv: %w", err)
	}
	om.fieldFile = f

	f, err = os.Create(filepath.Join(dir, "summary.csv"))
	if err != nil {
		om.fieldFile.Close()
		return nil, fmt.Errorf("creating summary.csv: %w", err)
	}
	om.summaryFile = f

	return om, nil
}

// WriteConfig saves cfg as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteField writes every cell to field.csv and appends the summary row.
// field.csv holds a single field; later calls only append summaries.
func (om *OutputManager) WriteField(f *Field) error {
	if om == nil {
		return nil
	}
	if !om.fieldWritten {
		if err := gocsv.Marshal(f.Records(), om.fieldFile); err != nil {
			return fmt.Errorf("writing field: %w", err)
		}
		om.fieldWritten = true
	}
	return om.WriteSummary(f.SummaryRecord())
}

// WriteSummary appends one row to summary.csv.
func (om *OutputManager) WriteSummary(rec SummaryRecord) error {
	if om == nil {
		return nil
	}
	records := []SummaryRecord{rec}
	if !om.summaryHeaderWritten {
		if err := gocsv.Marshal(records, om.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		om.summaryHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, f := range []*os.File{om.fieldFile, om.summaryFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
