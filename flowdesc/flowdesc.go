// vi: sw=4 ts=4:

/*

	Mnemonic:	flowdesc
	Abstract:	Parses a flow descriptor out of MQTT v5 user properties, the
				same strict-key contract a broker-side monitor carries
				alongside a publish before this controller's register_flow
				endpoint ever sees it (spec §6). Grounded on
				original_source/ort_nm/ort_nm.py's extract_rt_attributes.
				ORT_NM itself (the MQTT monitor process) is an external
				collaborator out of scope for this controller (spec §1); this
				package is wired into restapi.handleRegisterFlow's optional
				user_properties field so a caller can forward the raw MQTT
				properties instead of parsing them itself first.
	Date:		2026

*/

package flowdesc

import (
	"fmt"
	"strconv"
	"strings"
)

// requiredKeys are the strict set the spec requires; a user-property map
// missing any of them is not a real-time flow descriptor at all.
var requiredKeys = []string{"Ci", "Pi", "Ti", "Di", "BWi"}

// Descriptor is the parsed, typed form of a flow's real-time attributes as
// carried by MQTT v5 user properties.
type Descriptor struct {
	Ci  float64
	Pi  int
	Ti  float64
	Di  float64
	BWi float64
}

// Parse builds a Descriptor from props (the raw MQTT v5 UserProperty
// key/value pairs). The packet's own QoS and topic are not part of the
// Descriptor; the caller takes them from the packet itself. It returns an error if any of the five strict keys is missing or
// unparsable -- the caller's job is then to simply ignore the message, as
// ort_nm.py does, not to guess at defaults.
func Parse(props map[string]string) (Descriptor, error) {
	for _, k := range requiredKeys {
		if _, ok := props[k]; !ok {
			return Descriptor{}, fmt.Errorf("flowdesc: missing required user property %q", k)
		}
	}

	ci, err := parseMillis(props["Ci"])
	if err != nil {
		return Descriptor{}, fmt.Errorf("flowdesc: Ci: %w", err)
	}
	ti, err := parseMillis(props["Ti"])
	if err != nil {
		return Descriptor{}, fmt.Errorf("flowdesc: Ti: %w", err)
	}
	di, err := parseMillis(props["Di"])
	if err != nil {
		return Descriptor{}, fmt.Errorf("flowdesc: Di: %w", err)
	}
	pi, err := strconv.Atoi(strings.TrimSpace(props["Pi"]))
	if err != nil {
		return Descriptor{}, fmt.Errorf("flowdesc: Pi: %w", err)
	}
	bwi, err := parseBandwidth(props["BWi"])
	if err != nil {
		return Descriptor{}, fmt.Errorf("flowdesc: BWi: %w", err)
	}

	return Descriptor{Ci: ci, Pi: pi, Ti: ti, Di: di, BWi: bwi}, nil
}

// parseMillis strips a trailing "ms" unit suffix (the only suffix the
// original ever emits) before parsing a float, matching
// attrs['Ci'].replace('ms','') in ort_nm.py.
func parseMillis(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "ms", ""))
	return strconv.ParseFloat(s, 64)
}

// parseBandwidth parses BWi, which per spec §6 "accepts Mbps/Kbps suffix"
// rather than the "ms" suffix every other field carries. A bare number is
// already in Mbps, matching RTAttributes.BWi's unit; a "Kbps" suffix is
// converted down to Mbps so every Descriptor.BWi is in the same unit
// regardless of which suffix the publisher used.
func parseBandwidth(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "Mbps"):
		return strconv.ParseFloat(strings.TrimSuffix(s, "Mbps"), 64)
	case strings.HasSuffix(s, "Kbps"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "Kbps"), 64)
		if err != nil {
			return 0, err
		}
		return v / 1000, nil
	default:
		return strconv.ParseFloat(s, 64)
	}
}
