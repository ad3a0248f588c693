// File: utils/constants.go
package utils

import "time"

// InteractionCachePrefix is the prefix used for Redis pending-interaction keys.
const InteractionCachePrefix = "interaction:"

// PendingInteractionTTL is how long a paused conversation waits for a reply.
const PendingInteractionTTL = 30 * time.Minute

// InteractionSweepInterval is how often the in-memory store evicts expired entries.
const InteractionSweepInterval = 5 * time.Minute

// TechnicianAvgSpeedKmh is the conservative travel speed used for ETA estimates.
const TechnicianAvgSpeedKmh = 25.0

// MaxDailyJobsDefault caps a technician's bookings per day when no explicit
// capacity is configured.
const MaxDailyJobsDefault = 5

// WorkingDayScanDays bounds the forward scan for alternative working days.
const WorkingDayScanDays = 14
