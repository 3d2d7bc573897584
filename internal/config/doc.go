// Package config provides application configuration for the FAO Pulse
// positioning service.
//
// Configuration is loaded from environment variables with the FAOPULSE_
// prefix, optionally merged with a config.yaml file (environment wins).
// The market holiday table lives in holidays.yaml and is treated as external
// data: an embedded copy covers the current year, and Calendar.HolidayFile
// points at a replacement table when one is needed.
package config
