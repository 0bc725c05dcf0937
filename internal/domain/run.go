package domain

import "time"

const (
	MaxReactorsPerUser = 20
	MaxRunHistory      = 20
	MaxReactorNameLen  = 32
)

// DefaultReactorName - имя реактора, создаваемого при первом контакте.
const DefaultReactorName = "main"

// RunRecord - один успешный прогон именованного реактора.
type RunRecord struct {
	ID         string
	UserID     int64
	Reactor    string
	InputA     float64
	InputB     float64
	Conversion float64
	Mode       Mode
	SplitRatio float64
	Outputs    []float64
	RanAt      time.Time
}

// ValidateReactorName проверяет имя экземпляра: 1-32 символа, латиница,
// цифры, '-' и '_'.
func ValidateReactorName(name string) error {
	if name == "" || len(name) > MaxReactorNameLen {
		return ErrInvalidReactorName
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return ErrInvalidReactorName
		}
	}
	return nil
}
