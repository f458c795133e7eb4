package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"campuspulse/internal/api/handler"
	"campuspulse/internal/datastore"
	"campuspulse/internal/datastore/memstore"
	"campuspulse/internal/interfaces"
	"campuspulse/internal/pkg/caching"
	"campuspulse/internal/pkg/limiter"
	"campuspulse/internal/pkg/locking"
	"campuspulse/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	vs, err := envs()
	if err != nil {
		log.Fatal(err)
	}

	container := NewContainer(vs)

	app := &cli.App{
		Name: "api",
		Commands: []*cli.Command{
			commandServer(container),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// envs requires the backing-store variables only when Postgres is in play.
// Without DB_DSN the process runs on the in-memory store and needs nothing.
func envs() (map[string]string, error) {
	if os.Getenv("DB_DSN") == "" {
		return map[string]string{}, nil
	}

	return env.EnvsRequired(
		"DB_DSN",
		"REDIS_CACHE",
		"REDIS_MUTEX",
	)
}

func commandServer(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "0.0.0.0:8080",
				Usage: "serve address",
			},
		},
		Action: func(c *cli.Context) error {
			vs := do.MustInvokeNamed[map[string]string](container, "envs")
			router, err := handler.New(&handler.Config{
				Container: container,
				Mode:      vs["API_MODE"],
				Origins:   strings.Split(vs["API_ORIGINS"], ","),
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    c.String("addr"),
				Handler: router,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				log.Printf("ListenAndServe: %s (%s)\n", c.String("addr"), vs["API_MODE"])
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				if err := srv.Shutdown(context.TODO()); err != nil {
					return err
				}

				if snapshot := os.Getenv("MEM_SNAPSHOT"); snapshot != "" && os.Getenv("DB_DSN") == "" {
					store := do.MustInvoke[*memstore.Store](container)
					if err := store.SaveSnapshot(snapshot); err != nil {
						log.Println("save snapshot:", err)
					}
				}
				return nil
			})

			return errWg.Wait()
		},
	}
}

func NewContainer(vs map[string]string) *do.Injector {
	injector := do.New()
	vs["API_MODE"] = os.Getenv("API_MODE")
	vs["API_ORIGINS"] = os.Getenv("API_ORIGINS")

	if vs["API_MODE"] == "" {
		vs["API_MODE"] = "production"
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}

	do.ProvideNamedValue(injector, "envs", vs)

	usePostgres := os.Getenv("DB_DSN") != ""

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(os.Getenv("DB_DSN")),
			pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
		))

		return bun.NewDB(sqldb, pgdialect.New()), nil
	})

	do.Provide(injector, func(i *do.Injector) (*memstore.Store, error) {
		store := memstore.New()
		if snapshot := os.Getenv("MEM_SNAPSHOT"); snapshot != "" {
			if err := store.LoadSnapshot(snapshot); err != nil {
				return nil, err
			}
		}

		if err := datastore.SeedDemo(context.Background(), store, store, store); err != nil {
			return nil, err
		}

		return store, nil
	})

	do.ProvideNamed(injector, "redis-cache", func(i *do.Injector) (redis.UniversalClient, error) {
		clusterCacheRedisURL := os.Getenv("CLUSTER_REDIS_CACHE")
		if clusterCacheRedisURL != "" {
			clusterOpts, err := redis.ParseClusterURL(clusterCacheRedisURL)
			if err != nil {
				return nil, err
			}
			return redis.NewClusterClient(clusterOpts), nil
		}
		return db.InitRedis(&db.RedisConfig{
			URL: os.Getenv("REDIS_CACHE"),
		})
	})

	do.ProvideNamed(injector, "redis-mutex", func(i *do.Injector) (redis.UniversalClient, error) {
		clusterMutexRedisURL := os.Getenv("CLUSTER_REDIS_MUTEX")
		if clusterMutexRedisURL != "" {
			clusterOpts, err := redis.ParseClusterURL(clusterMutexRedisURL)
			if err != nil {
				return nil, err
			}
			return redis.NewClusterClient(clusterOpts), nil
		}
		return db.InitRedis(&db.RedisConfig{
			URL: os.Getenv("REDIS_MUTEX"),
		})
	})

	do.ProvideNamed(injector, "redis-limiter", func(i *do.Injector) (redis.UniversalClient, error) {
		clusterLimiterRedisURL := os.Getenv("CLUSTER_REDIS_LIMITER")
		if clusterLimiterRedisURL != "" {
			clusterOpts, err := redis.ParseClusterURL(clusterLimiterRedisURL)
			if err != nil {
				return nil, err
			}
			return redis.NewClusterClient(clusterOpts), nil
		}
		return db.InitRedis(&db.RedisConfig{
			URL: os.Getenv("REDIS_LIMITER"),
		})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		if os.Getenv("REDIS_CACHE") == "" && os.Getenv("CLUSTER_REDIS_CACHE") == "" {
			return caching.NewCacheLocal()
		}

		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Locker, error) {
		if os.Getenv("REDIS_MUTEX") == "" && os.Getenv("CLUSTER_REDIS_MUTEX") == "" {
			return locking.NewLocalLocker(), nil
		}

		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return locking.NewRedsyncLocker(redsync.New(pool)), nil
	})

	if os.Getenv("REDIS_LIMITER") != "" || os.Getenv("CLUSTER_REDIS_LIMITER") != "" {
		do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
			dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
			if err != nil {
				return nil, err
			}

			return limiter.NewLimiter(dbRedis)
		})
	}

	provideStores(injector, usePostgres)

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(
			do.MustInvoke[interfaces.ConfigStore](i),
			do.MustInvoke[caching.Cache](i),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceEvent, error) {
		return services.NewServiceEvent(
			do.MustInvoke[interfaces.EventStore](i),
			do.MustInvoke[interfaces.Locker](i),
			do.MustInvoke[caching.Cache](i),
			do.MustInvoke[*services.ServiceConfig](i),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceCheckIn, error) {
		return services.NewServiceCheckIn(
			do.MustInvoke[interfaces.CheckInStore](i),
			do.MustInvoke[interfaces.Locker](i),
			do.MustInvoke[*services.ServiceEvent](i),
			do.MustInvoke[*services.ServiceConfig](i),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceChallenge, error) {
		return services.NewServiceChallenge(
			do.MustInvoke[interfaces.ChallengeStore](i),
			do.MustInvoke[interfaces.Locker](i),
			do.MustInvoke[*services.ServiceConfig](i),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceLedger, error) {
		return services.NewServiceLedger(
			do.MustInvoke[interfaces.LedgerStore](i),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceUser, error) {
		return services.NewServiceUser(
			do.MustInvoke[interfaces.UserStore](i),
			do.MustInvoke[interfaces.LedgerStore](i),
			do.MustInvoke[caching.Cache](i),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceLeaderboard, error) {
		return services.NewServiceLeaderboard(
			do.MustInvoke[interfaces.LedgerStore](i),
			do.MustInvoke[interfaces.UserStore](i),
			do.MustInvoke[caching.Cache](i),
			do.MustInvoke[*services.ServiceUser](i),
			do.MustInvoke[*services.ServiceConfig](i),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServicePrize, error) {
		return services.NewServicePrize(
			do.MustInvoke[interfaces.PrizeStore](i),
			do.MustInvoke[interfaces.LedgerStore](i),
			do.MustInvoke[interfaces.Locker](i),
			do.MustInvoke[caching.Cache](i),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceBuddy, error) {
		return services.NewServiceBuddy(os.Getenv("BUDDY_ENDPOINT"), os.Getenv("BUDDY_API_KEY"))
	})

	return injector
}

func provideStores(injector *do.Injector, usePostgres bool) {
	if usePostgres {
		do.Provide(injector, func(i *do.Injector) (interfaces.UserStore, error) {
			return datastore.NewPGUserStore(do.MustInvoke[*bun.DB](i)), nil
		})
		do.Provide(injector, func(i *do.Injector) (interfaces.EventStore, error) {
			return datastore.NewPGEventStore(do.MustInvoke[*bun.DB](i)), nil
		})
		do.Provide(injector, func(i *do.Injector) (interfaces.CheckInStore, error) {
			return datastore.NewPGCheckInStore(do.MustInvoke[*bun.DB](i)), nil
		})
		do.Provide(injector, func(i *do.Injector) (interfaces.ChallengeStore, error) {
			return datastore.NewPGChallengeStore(do.MustInvoke[*bun.DB](i)), nil
		})
		do.Provide(injector, func(i *do.Injector) (interfaces.LedgerStore, error) {
			return datastore.NewPGLedgerStore(do.MustInvoke[*bun.DB](i)), nil
		})
		do.Provide(injector, func(i *do.Injector) (interfaces.PrizeStore, error) {
			return datastore.NewPGPrizeStore(do.MustInvoke[*bun.DB](i)), nil
		})
		do.Provide(injector, func(i *do.Injector) (interfaces.ConfigStore, error) {
			return datastore.NewPGConfigStore(do.MustInvoke[*bun.DB](i)), nil
		})
		return
	}

	do.Provide(injector, func(i *do.Injector) (interfaces.UserStore, error) {
		return do.MustInvoke[*memstore.Store](i), nil
	})
	do.Provide(injector, func(i *do.Injector) (interfaces.EventStore, error) {
		return do.MustInvoke[*memstore.Store](i), nil
	})
	do.Provide(injector, func(i *do.Injector) (interfaces.CheckInStore, error) {
		return do.MustInvoke[*memstore.Store](i), nil
	})
	do.Provide(injector, func(i *do.Injector) (interfaces.ChallengeStore, error) {
		return do.MustInvoke[*memstore.Store](i), nil
	})
	do.Provide(injector, func(i *do.Injector) (interfaces.LedgerStore, error) {
		return do.MustInvoke[*memstore.Store](i), nil
	})
	do.Provide(injector, func(i *do.Injector) (interfaces.PrizeStore, error) {
		return do.MustInvoke[*memstore.Store](i), nil
	})
	do.Provide(injector, func(i *do.Injector) (interfaces.ConfigStore, error) {
		return do.MustInvoke[*memstore.Store](i), nil
	})
}
