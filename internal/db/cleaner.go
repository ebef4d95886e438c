package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartExpiredSessionCleaner removes persisted sessions whose token has
// expired. It sweeps once immediately and then every interval until ctx is done.
func StartExpiredSessionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			CleanExpiredSessions(ctx, db, time.Now(), log)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// CleanExpiredSessions deletes sessions that expired before now and
// returns how many were removed.
func CleanExpiredSessions(ctx context.Context, db *sql.DB, now time.Time, log *zap.Logger) int64 {
	res, err := db.ExecContext(ctx, `
        DELETE FROM sessions
         WHERE expires_at IS NOT NULL
           AND expires_at < ?
    `, now.Unix())
	if err != nil {
		if ctx.Err() == nil {
			log.Error("failed to clean expired sessions", zap.Error(err))
		}
		return 0
	}
	rows, _ := res.RowsAffected()
	if rows > 0 {
		log.Info("cleaned expired sessions", zap.Int64("removed", rows))
	}
	return rows
}
