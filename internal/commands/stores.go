package commands

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/database"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

const connectTimeout = 15 * time.Second

// stores holds the open connections a command needs. Fields a command did
// not ask for stay nil.
type stores struct {
	mongo    *mongo.Client
	mongoDB  *mongo.Database
	postgres *sql.DB
	redis    *redis.Client
	cipher   *utils.Cipher
}

type need struct {
	postgres bool
	redis    bool
}

// openStores always opens MongoDB; Postgres and Redis only when asked.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger, n need) (*stores, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	s := &stores{}
	if cfg.EncryptionKey == "" {
		log.Warn("ENCRYPTION_KEY not set; entry titles and content are stored as plain text")
	} else {
		c, err := utils.NewCipher(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		s.cipher = c
	}

	client, db, err := database.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	s.mongo, s.mongoDB = client, db
	log.Info("connected to MongoDB", zap.String("database", db.Name()))

	if n.postgres {
		pg, err := database.ConnectPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			s.close(log)
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.postgres = pg
		log.Info("connected to PostgreSQL")
	}
	if n.redis {
		rc, err := database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			s.close(log)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.redis = rc
		log.Info("connected to Redis")
	}
	return s, nil
}

func (s *stores) entryService(log *zap.Logger) *services.EntryService {
	var events services.EventPublisher
	if s.redis != nil {
		events = services.NewRedisEntryEvents(s.redis, log)
	}
	return services.NewEntryService(services.NewMongoEntryStore(s.mongoDB, s.cipher), events, log)
}

func (s *stores) close(log *zap.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn("closing redis", zap.Error(err))
		}
	}
	if s.postgres != nil {
		if err := s.postgres.Close(); err != nil {
			log.Warn("closing postgres", zap.Error(err))
		}
	}
	if s.mongo != nil {
		if err := database.DisconnectMongo(s.mongo); err != nil {
			log.Warn("closing mongodb", zap.Error(err))
		}
	}
}
