package utils

import "time"

// NormalizeClock accepts "HH:MM" or "HH:MM:SS" and returns "HH:MM:SS".
func NormalizeClock(s string) (string, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	_, err := time.Parse("15:04:05", s)
	return "", err
}
