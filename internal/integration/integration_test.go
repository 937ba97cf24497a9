package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"wellness-quiz/internal/app"
	"wellness-quiz/internal/catalog"
	"wellness-quiz/internal/domain"
	"wellness-quiz/internal/infra/postgres"
	pgmigrations "wellness-quiz/internal/infra/postgres/migrations"
	infraredis "wellness-quiz/internal/infra/redis"
)

var fullRun = []domain.Answer{
	domain.Choice(catalog.ActivityVeryActive),
	domain.Selection{"None"},
	domain.Number(30),
	domain.Selection{"None"},
	domain.Choice("No"),
	domain.Choice(catalog.GoalGain),
	domain.Number(7),
	domain.Choice("Moderate"),
	domain.Number(175),
	domain.Number(70),
	domain.Selection{"Vegetarian"},
}

func TestPostgresCatalogAndStorageEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	migrateAndSeedCatalog(t, ctx, pgURL, "default", catalog.Default().Questions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	c, err := postgres.NewCatalogLoader(pool, "default").LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if c.Len() != catalog.Default().Len() {
		t.Fatalf("expected %d questions, got %d", catalog.Default().Len(), c.Len())
	}
	if _, err := postgres.NewCatalogLoader(pool, "missing").LoadCatalog(ctx); err == nil {
		t.Fatalf("expected error for unknown catalog")
	}

	storage := postgres.NewStorage(pool)
	service := app.NewQuizService(c, storage, nil)
	if err := service.Resume(ctx); err != nil {
		t.Fatalf("resume: %v", err)
	}
	for _, a := range fullRun[:5] {
		if _, err := service.SubmitAndAdvance(ctx, a); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	// A second service over the same database picks up where the first stopped.
	resumed := app.NewQuizService(c, storage, nil)
	if err := resumed.Resume(ctx); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := resumed.State().CurrentStepIndex; got != 5 {
		t.Fatalf("expected step 5 after resume, got %d", got)
	}
	var out app.Outcome
	for _, a := range fullRun[5:] {
		if out, err = resumed.SubmitAndAdvance(ctx, a); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if !out.Completed {
		t.Fatalf("expected completion")
	}
	report, result, err := resumed.ComputeAndRecord(ctx, out.Answers)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if report.GoalCalories != report.DailyCalories+500 {
		t.Fatalf("unexpected goal calories %+v", report)
	}
	history, err := resumed.History().List(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != result.ID {
		t.Fatalf("expected recorded result, got %+v", history)
	}
}

func TestRedisStorageEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()

	storage := infraredis.NewStorage(client, "it", 5*time.Minute)
	service := app.NewQuizService(catalog.Default(), storage, nil)
	var out app.Outcome
	for _, a := range fullRun {
		if out, err = service.SubmitAndAdvance(ctx, a); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if _, _, err := service.ComputeAndRecord(ctx, out.Answers); err != nil {
		t.Fatalf("record: %v", err)
	}
	ttl, err := client.TTL(ctx, "it:"+domain.RecordHistory).Result()
	if err != nil || ttl <= 0 {
		t.Fatalf("expected history key with ttl, got %v (%v)", ttl, err)
	}
}

// startContainer runs image until port listens and returns its mapped host:port.
func startContainer(t *testing.T, ctx context.Context, image, port string, env map[string]string) (string, func()) {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        image,
			Env:          env,
			ExposedPorts: []string{port},
			WaitingFor:   wait.ForListeningPort(nat.Port(port)).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", image, err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", image, err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("%s port: %v", image, err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port()), func() {
		_ = container.Terminate(ctx)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	addr, cleanup := startContainer(t, ctx, "postgres:15-alpine", "5432/tcp", map[string]string{
		"POSTGRES_USER":     "wellness",
		"POSTGRES_PASSWORD": "wellnesspass",
		"POSTGRES_DB":       "wellness",
	})
	return fmt.Sprintf("postgres://wellness:wellnesspass@%s/wellness?sslmode=disable", addr), cleanup
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	addr, cleanup := startContainer(t, ctx, "redis:7-alpine", "6379/tcp", nil)
	return "redis://" + addr, cleanup
}

func migrateAndSeedCatalog(t *testing.T, ctx context.Context, dsn, id string, questions []domain.Question) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO catalogs (id, questions) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET questions=EXCLUDED.questions`, id, string(data)); err != nil {
		t.Fatalf("insert catalog: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
