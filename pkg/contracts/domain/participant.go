package domain

import (
	"fmt"
	"strings"
)

// Participant identifies an institutional category in the NSE F&O
// participant-wise open interest report.
type Participant string

const (
	ParticipantFII    Participant = "FII"
	ParticipantDII    Participant = "DII"
	ParticipantPro    Participant = "PRO"
	ParticipantClient Participant = "CLIENT"
)

// Participants lists every tracked category in canonical report order.
// Metrics and trend series iterate this slice so output ordering is stable.
var Participants = []Participant{
	ParticipantFII,
	ParticipantPro,
	ParticipantDII,
	ParticipantClient,
}

// ParseParticipant normalizes a raw Client Type cell to a canonical category.
// Older report eras spell PRO/CLIENT as "Pro"/"Client"; matching is
// case-insensitive after trimming. Unrecognized categories (e.g. the TOTAL
// footer row some files carry) are rejected here so they never reach a
// Snapshot.
func ParseParticipant(raw string) (Participant, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FII":
		return ParticipantFII, nil
	case "DII":
		return ParticipantDII, nil
	case "PRO":
		return ParticipantPro, nil
	case "CLIENT":
		return ParticipantClient, nil
	default:
		return "", fmt.Errorf("unrecognized participant category: %q", raw)
	}
}

// DisplayName returns the label used on the dashboard. The CLIENT category
// represents retail traders and is presented as RETAIL.
func (p Participant) DisplayName() string {
	if p == ParticipantClient {
		return "RETAIL"
	}
	return string(p)
}
