package service

import (
	"context"
	"time"

	"patient-registry/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// raiseSequenceScript is a package-level Lua script.
// Redis Go client automatically uses EVALSHA after the first call instead of
// sending the full script text every time.
//
// Logic: raise the counter to the target value unless it is already ahead,
// and return whichever is larger. Never lowers the counter, so hints issued
// to concurrent registrations stay distinct.
var raiseSequenceScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	local target = tonumber(ARGV[1])
	if target > current then
		redis.call('SET', KEYS[1], target)
	end
	if target > current then
		return target
	end
	return current
`)

const (
	// Redis key holding the last issued MRN sequence number
	SequenceKey = "patient:mrn:seq"

	// Timeout for individual Redis operations
	sequenceOpTimeout = 5 * time.Second
)

// SequenceService hands out best-effort MRN sequence hints from a Redis
// counter synced against the authoritative Postgres state at startup.
//
// The counter is only an optimization: it lets concurrent registrations skip
// the read-max race entirely. The unique index on medical_record_number is
// the final arbiter, and the repository falls back to a transactional max
// read whenever the counter is unavailable or behind.
type SequenceService struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewSequenceService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) *SequenceService {
	return &SequenceService{
		db:          db,
		redisClient: redisClient,
		log:         log,
	}
}

// SyncFromDatabase raises the Redis counter to the highest sequence number
// already stored, including soft-deleted rows. Called at startup so hints
// never collide with numbers allocated before this process existed.
func (s *SequenceService) SyncFromDatabase(ctx context.Context) error {
	var current int64
	err := s.db.WithContext(ctx).Model(&entity.Patient{}).
		Select("COALESCE(MAX(CAST(SUBSTRING(medical_record_number FROM 5) AS BIGINT)), 0)").
		Scan(&current).Error
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, sequenceOpTimeout)
	defer cancel()

	value, err := raiseSequenceScript.Run(opCtx, s.redisClient, []string{SequenceKey}, current).Int64()
	if err != nil {
		return err
	}

	s.log.Infof("MRN sequence synced: database max %d, counter at %d", current, value)
	return nil
}

// Next returns the next sequence hint, or 0 when Redis cannot serve one.
// Implements the repository's SequenceHint contract.
func (s *SequenceService) Next(ctx context.Context) int64 {
	opCtx, cancel := context.WithTimeout(ctx, sequenceOpTimeout)
	defer cancel()

	value, err := s.redisClient.Incr(opCtx, SequenceKey).Result()
	if err != nil {
		s.log.Warnf("Failed to get MRN sequence hint from Redis: %+v", err)
		return 0
	}
	return value
}
