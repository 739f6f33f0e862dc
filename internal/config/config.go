package config

const (
	DefaultTimeZone = "Asia/Karachi"

	// MatchAutoThreshold is the fuzzy-name score (0-100) at or above which a
	// triangulated dispatch row is auto-applied to the ledger instead of
	// landing in the recon basket. Services may override it per deployment
	// through services.yaml, but 90 is the policy default.
	MatchAutoThreshold = 90

	// ImportCommitBatch is the number of imported entry rows between
	// intermediate progress updates during a bulk import.
	ImportCommitBatch = 200

	// DefaultStockSnapshotSchedule runs the daily stock summary snapshot
	// after close of business.
	DefaultStockSnapshotSchedule = "0 21 * * *"
)

// Date/time formats shared across services.
const (
	DateFormat     = "2006-01-02"
	TimeFormat     = "15:04:05"
	DateTimeFormat = "2006-01-02 15:04:05"
)
