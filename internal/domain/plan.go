package domain

import "fmt"

// Level is the severity of a Diagnostic
type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Diagnostic is one human-readable narration line produced while planning
type Diagnostic struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Infof builds an info-level Diagnostic
func Infof(format string, args ...any) Diagnostic {
	return Diagnostic{Level: LevelInfo, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warn-level Diagnostic
func Warnf(format string, args ...any) Diagnostic {
	return Diagnostic{Level: LevelWarn, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Level, d.Message)
}

// Weight units reported alongside shard weights
const (
	UnitSeconds = "s"
	UnitScore   = "score"
)

// Plan is the complete output of a planning run
type Plan struct {
	Algorithm   string             `json:"algorithm"`
	AutoShards  bool               `json:"auto_shards"`
	Weighted    bool               `json:"weighted"`
	Unit        string             `json:"unit,omitempty"`
	Shards      ShardSet           `json:"shards"`
	Weights     map[string]float64 `json:"weights,omitempty"` // Resolved weight per file when weighted
	Current     int                `json:"current"`           // 1-based index of the selected shard
	Selected    []string           `json:"selected"`          // Files of the selected shard
	Diagnostics []Diagnostic       `json:"diagnostics"`
}

// Warnings returns only the warn-level diagnostics
func (p *Plan) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range p.Diagnostics {
		if d.Level == LevelWarn {
			out = append(out, d)
		}
	}
	return out
}
