package models

import (
	"fmt"
	"strings"
)

// ReportKind identifies which report the engine builds.
type ReportKind int

const (
	ReportLibrary ReportKind = iota
	ReportHistory
	// ReportNotImplemented is a recognized kind that has no builder yet.
	ReportNotImplemented
)

func (k ReportKind) String() string {
	switch k {
	case ReportLibrary:
		return "library"
	case ReportHistory:
		return "history"
	case ReportNotImplemented:
		return "not_implemented"
	default:
		return fmt.Sprintf("ReportKind(%d)", int(k))
	}
}

// ParseReportKind maps a CLI name to a [ReportKind].
func ParseReportKind(s string) (ReportKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "library":
		return ReportLibrary, true
	case "history", "listening":
		return ReportHistory, true
	case "not_implemented":
		return ReportNotImplemented, true
	default:
		return 0, false
	}
}

// TimeRange is the window over which top artists and tracks are computed.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// ParseTimeRange validates s; an empty string selects [MediumTerm].
func ParseTimeRange(s string) (TimeRange, bool) {
	switch TimeRange(s) {
	case "":
		return MediumTerm, true
	case ShortTerm, MediumTerm, LongTerm:
		return TimeRange(s), true
	default:
		return "", false
	}
}
