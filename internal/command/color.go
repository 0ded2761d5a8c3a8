package command

import "strconv"

// RGB is a decomposed colour.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ParseHexColor decomposes a #RRGGBB string into channel values.
// Only the 7-character form is accepted; shorthand (#RGB) and alpha
// variants are rejected.
func ParseHexColor(hex string) (RGB, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return RGB{}, ErrInvalidColor
	}

	var channels [3]int
	for i := range channels {
		v, err := strconv.ParseUint(hex[1+i*2:3+i*2], 16, 8)
		if err != nil {
			return RGB{}, ErrInvalidColor
		}
		channels[i] = int(v)
	}
	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}
