package normalize

import (
	"strconv"
	"strings"
)

// codes maps the maneuver log's numeric event codes to descriptions
var codes = map[int]string{
	0:  "Roll Maneuvers",
	1:  "Momentum Management Maneuvers",
	2:  "Station-Keeping Maneuvers",
	3:  "Eclipse Season Begins",
	4:  "Eclipse Season Ends",
	5:  "Battery Voltage Adjustments",
	6:  "EVE Crucform Maneuvers",
	7:  "EVE FOV & Offpoint Maneuvers",
	8:  "GT/PZT Calibrations",
	9:  "CCD Bakeout",
	10: "Regulus Offpoint",
	11: "Comet Offpoint",
	12: "Camera Anomaly",
	13: "Transit Ops/Transit",
	14: "IRU Operations",
	15: "load shed",
	16: "Load/Software Anomaly/Error",
	17: "Table Parity Error",
	18: "Misc Instrument Errors Not Listed Above",
	19: "Misc Tests/Special Ops",
}

// Codes returns a copy of the categorical code table
func Codes() map[int]string {
	out := make(map[int]string, len(codes))
	for k, v := range codes {
		out[k] = v
	}
	return out
}

// LookupCode returns the description for a numeric code cell. There is no
// fallback: an unrecognized code is an error.
func LookupCode(cell string) (string, error) {
	raw := strings.TrimSpace(cell)
	// Spreadsheet exports write integer codes as "3.0"
	raw = strings.TrimSuffix(raw, ".0")

	code, err := strconv.Atoi(raw)
	if err != nil {
		return "", &UnknownCategoricalCodeError{Code: cell}
	}

	desc, ok := codes[code]
	if !ok {
		return "", &UnknownCategoricalCodeError{Code: cell}
	}
	return desc, nil
}
