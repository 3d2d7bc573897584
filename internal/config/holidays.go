package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// The holiday table is data, not logic: it ships embedded for the covered
// year and can be overridden by Calendar.HolidayFile for other markets or
// later years.
//
//go:embed holidays.yaml
var embeddedHolidays []byte

type holidayFile struct {
	Holidays []string `yaml:"holidays"`
}

// LoadHolidays returns the market holiday dates from the configured file, or
// from the embedded table when no file is configured.
func (c *Config) LoadHolidays() ([]time.Time, error) {
	data := embeddedHolidays
	if c != nil && c.Calendar.HolidayFile != "" {
		fileData, err := os.ReadFile(c.Calendar.HolidayFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read holiday file %s: %w", c.Calendar.HolidayFile, err)
		}
		data = fileData
	}
	return parseHolidays(data)
}

func parseHolidays(data []byte) ([]time.Time, error) {
	var hf holidayFile
	if err := yaml.Unmarshal(data, &hf); err != nil {
		return nil, fmt.Errorf("failed to parse holiday table: %w", err)
	}

	dates := make([]time.Time, 0, len(hf.Holidays))
	for _, raw := range hf.Holidays {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}
