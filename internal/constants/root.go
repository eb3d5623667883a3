package constants

import "time"

const (
	AppName            = "slotbook"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/slotbook/slotbook.db"
	Version            = "v0.2.0"

	// DayKeyFormat is the format of schedule keys and user-facing dates (DD-MM-YYYY)
	DayKeyFormat = "02-01-2006"

	// DateFormat is the ISO date format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time-of-day format (HH:MM)
	TimeFormat = "15:04"

	// Calendar files in a JSON directory store are named calendar.<id>.json
	CalendarFilePrefix = "calendar."
	CalendarFileSuffix = ".json"

	// Window kinds as persisted by the SQL stores
	WindowKindSlot    = "slot"
	WindowKindSession = "session"

	// Cache
	CacheKeyPrefix  = "slotbook:calendar:"
	DefaultCacheTTL = 5 * time.Minute

	// HTTP API
	DefaultListenAddr = "127.0.0.1:8085"
	ReadHeaderTimeout = 5 * time.Second
)
