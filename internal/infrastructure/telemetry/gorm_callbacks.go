package telemetry

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type contextKey string

const queryStartTimeKey contextKey = "telemetry_query_start_time"

// registerAround registers before and after hooks on every GORM processor
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	if before != nil {
		if err := errors.Join(
			cb.Create().Before("gorm:create").Register(prefix+":before_create", before),
			cb.Query().Before("gorm:query").Register(prefix+":before_query", before),
			cb.Update().Before("gorm:update").Register(prefix+":before_update", before),
			cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before),
			cb.Row().Before("gorm:row").Register(prefix+":before_row", before),
			cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before),
		); err != nil {
			return err
		}
	}
	if after != nil {
		return errors.Join(
			cb.Create().After("gorm:create").Register(prefix+":after_create", after),
			cb.Query().After("gorm:query").Register(prefix+":after_query", after),
			cb.Update().After("gorm:update").Register(prefix+":after_update", after),
			cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after),
			cb.Row().After("gorm:row").Register(prefix+":after_row", after),
			cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after),
		)
	}
	return nil
}

// markQueryStart stores the start time of the statement in its context
func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// queryElapsed returns the time since markQueryStart ran for the statement
func queryElapsed(db *gorm.DB) (time.Duration, bool) {
	if db.Statement.Context == nil {
		return 0, false
	}
	start, ok := db.Statement.Context.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
