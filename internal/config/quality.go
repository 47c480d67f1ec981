package config

import (
	"fmt"
	"strings"
)

// Quality is the coarse encoder quality knob exposed to callers.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
	QualityUltra  Quality = "ultra"
)

// ParseQuality validates a quality name. The empty string maps to high.
func ParseQuality(value string) (Quality, error) {
	switch Quality(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return QualityHigh, nil
	case QualityLow:
		return QualityLow, nil
	case QualityMedium:
		return QualityMedium, nil
	case QualityHigh:
		return QualityHigh, nil
	case QualityUltra:
		return QualityUltra, nil
	default:
		return "", fmt.Errorf("unknown quality %q (expected low, medium, high or ultra)", value)
	}
}

// CRF maps the quality enum onto a libx264 constant rate factor.
func (q Quality) CRF() int {
	switch q {
	case QualityLow:
		return 30
	case QualityMedium:
		return 26
	case QualityUltra:
		return 18
	default:
		return 22
	}
}
