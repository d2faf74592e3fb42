package repositories_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-api/backend/internal/config"
	"go-todo-api/backend/internal/database"
	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/repositories"
	"go-todo-api/backend/testutil"
)

func newVisitor(ip, session string, country, device *string, duration int) *models.Visitor {
	return &models.Visitor{
		IPAddress:     ip,
		SessionID:     session,
		Country:       country,
		DeviceType:    device,
		VisitDuration: duration,
	}
}

func TestVisitorRepository_UpsertCreateThenUpdate(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewVisitorRepository(db)
	ctx := context.Background()

	first, created, err := repo.Upsert(ctx, newVisitor("203.0.113.7", "s1", testutil.Ptr("VN"), nil, 15))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, first.VisitCount)
	assert.Equal(t, 15, first.VisitDuration)
	require.NotNil(t, first.Country)
	assert.Equal(t, "VN", *first.Country)

	time.Sleep(10 * time.Millisecond)

	// 2回目は visit_count を加算し、visit_duration は上書きする
	second, created, err := repo.Upsert(ctx, newVisitor("203.0.113.7", "s1", testutil.Ptr("JP"), nil, 40))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.VisitCount)
	assert.Equal(t, 40, second.VisitDuration)
	assert.True(t, second.LastVisited.After(first.LastVisited), "last_visited should move forward")
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	require.NotNil(t, second.Country)
	assert.Equal(t, "VN", *second.Country, "only counters and timestamps change on repeat visits")

	// 同じセッションでもIPが違えば別の訪問者
	other, created, err := repo.Upsert(ctx, newVisitor("198.51.100.1", "s1", nil, nil, 0))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)

	assert.Equal(t, 2, visitCount(t, db, "203.0.113.7", "s1"))
	assert.Equal(t, 1, visitCount(t, db, "198.51.100.1", "s1"))

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repositories.ErrVisitorNotFound)
}

// visitCount は (ip_address, session_id) の行の visit_count を直接読みます。
func visitCount(t *testing.T, db *sqlx.DB, ip, sessionID string) int {
	t.Helper()
	var count int
	query := db.Rebind("SELECT visit_count FROM visitors WHERE ip_address = ? AND session_id = ?")
	require.NoError(t, db.Get(&count, query, ip, sessionID))
	return count
}

func TestVisitorRepository_ConcurrentUpsertKeepsEveryVisit(t *testing.T) {
	// 複数の接続から同時に書き込むため、インメモリではなくファイルの SQLite を使う
	cfg := config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		Name:            filepath.Join(t.TempDir(), "visitors.db") + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)",
		MaxOpenConns:    8,
		MaxIdleConns:    8,
		ConnMaxLifetime: time.Minute,
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))

	repo := repositories.NewVisitorRepository(db)
	const workers = 20

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, isNew, err := repo.Upsert(context.Background(), newVisitor("203.0.113.50", "shared", nil, nil, 5))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if isNew {
				created++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, created, "exactly one request should create the visitor")
	assert.Equal(t, workers, visitCount(t, db, "203.0.113.50", "shared"))

	var rows int
	require.NoError(t, db.Get(&rows, "SELECT COUNT(*) FROM visitors"))
	assert.Equal(t, 1, rows)
}

func TestVisitorRepository_FindRecentOrderAndLimit(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewVisitorRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := repo.Upsert(ctx, newVisitor(fmt.Sprintf("10.0.0.%d", i), "s", nil, nil, 0))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	// 最初の訪問者が再訪すると先頭に来る
	_, _, err := repo.Upsert(ctx, newVisitor("10.0.0.0", "s", nil, nil, 0))
	require.NoError(t, err)

	visitors, err := repo.FindRecent(ctx, repositories.RecentVisitorsLimit)
	require.NoError(t, err)
	require.Len(t, visitors, 3)
	assert.Equal(t, "10.0.0.0", visitors[0].IPAddress)
	assert.Equal(t, "10.0.0.2", visitors[1].IPAddress)
	assert.Equal(t, "10.0.0.1", visitors[2].IPAddress)

	limited, err := repo.FindRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestVisitorRepository_Aggregates(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewVisitorRepository(db)
	ctx := context.Background()

	seed := []*models.Visitor{
		newVisitor("1.1.1.1", "a", testutil.Ptr("VN"), testutil.Ptr("mobile"), 0),
		newVisitor("1.1.1.1", "b", testutil.Ptr("VN"), testutil.Ptr("desktop"), 0),
		newVisitor("2.2.2.2", "a", testutil.Ptr("JP"), testutil.Ptr("mobile"), 0),
		newVisitor("3.3.3.3", "a", nil, nil, 0),
		newVisitor("4.4.4.4", "a", testutil.Ptr("US"), testutil.Ptr("mobile"), 0),
	}
	for _, v := range seed {
		_, _, err := repo.Upsert(ctx, v)
		require.NoError(t, err)
	}

	overview, err := repo.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), overview.UniqueVisitors)
	assert.Equal(t, int64(5), overview.TotalVisits)
	assert.Equal(t, int64(2), overview.DeviceTypes)
	assert.Equal(t, int64(3), overview.Countries)

	byCountry, err := repo.CountByCountry(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.CountryCount{
		{Country: "VN", Count: 2},
		{Country: "JP", Count: 1},
		{Country: "US", Count: 1},
	}, byCountry)

	// NULL の国を除いた件数の合計は総訪問数から NULL 行を引いた数と一致する
	var sum int64
	for _, c := range byCountry {
		sum += c.Count
	}
	assert.Equal(t, overview.TotalVisits-1, sum)

	byDevice, err := repo.CountByDeviceType(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.DeviceCount{
		{DeviceType: "mobile", Count: 3},
		{DeviceType: "desktop", Count: 1},
	}, byDevice)
}

func TestVisitorRepository_DeleteCreatedBefore(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewVisitorRepository(db)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 4; i++ {
		v, _, err := repo.Upsert(ctx, newVisitor(fmt.Sprintf("10.1.0.%d", i), "s", nil, nil, 0))
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	testutil.BackdateVisitor(t, db, ids[0], 40*24*time.Hour)
	testutil.BackdateVisitor(t, db, ids[1], 31*24*time.Hour)

	cutoff := database.Now().Add(-30 * 24 * time.Hour)
	deleted, err := repo.DeleteCreatedBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// 2回目は削除対象がない
	deleted, err = repo.DeleteCreatedBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	remaining, err := repo.FindRecent(ctx, repositories.RecentVisitorsLimit)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
