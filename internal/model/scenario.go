package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentKind selects how a scenario adjustment mutates an entry.
type AdjustmentKind int

const (
	AdjustDelay AdjustmentKind = iota
	AdjustOverride
	AdjustRemove
)

func (k AdjustmentKind) String() string {
	switch k {
	case AdjustDelay:
		return "delay"
	case AdjustOverride:
		return "override"
	case AdjustRemove:
		return "remove"
	}
	return fmt.Sprintf("AdjustmentKind(%d)", int(k))
}

// ParseAdjustmentKind accepts the English names and the Dutch labels
// ("vertraging", "bedrag", "verwijder") found in stored scenarios.
func ParseAdjustmentKind(s string) (AdjustmentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delay", "vertraging":
		return AdjustDelay, nil
	case "override", "bedrag":
		return AdjustOverride, nil
	case "remove", "verwijder":
		return AdjustRemove, nil
	}
	return 0, fmt.Errorf("unknown adjustment kind %q", s)
}

// ScenarioAdjustment is one what-if mutation of a single entry.
//
// Value is the number of days for Delay, the replacement amount for
// Override, and ignored for Remove.
type ScenarioAdjustment struct {
	EntryID string
	Kind    AdjustmentKind
	Value   decimal.Decimal
}

// Scenario is a named, ordered list of adjustments.
type Scenario struct {
	ID          string
	Name        string
	Adjustments []ScenarioAdjustment
	CreatedAt   time.Time
}
